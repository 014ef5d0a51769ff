package counter

import "github.com/janisto/huma-hashchain/internal/api"

// Output is the counter value response.
type Output struct {
	Body api.CounterResponse
}
