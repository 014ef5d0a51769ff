package hash

import "github.com/janisto/huma-hashchain/internal/api"

// Output is the hashed counter value response.
type Output struct {
	Body api.HashResponse
}
