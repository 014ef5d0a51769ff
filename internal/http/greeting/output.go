package greeting

// Output is the plain-text greeting. Body bytes are written as-is.
type Output struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}
