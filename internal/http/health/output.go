package health

// Output is the response for GET /health.
type Output struct {
	Body Data
}
