// Package health serves the liveness endpoint shared by all services.
package health

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Path is served on the admin listener, never on the service port.
const Path = "/health"

// Register mounts GET /health. peek may be nil; when set its value is
// reported as "next".
func Register(api huma.API, service string, peek func() uint64) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        Path,
		Summary:     "Health check",
		Tags:        []string{"Health"},
	}, func(_ context.Context, _ *struct{}) (*Output, error) {
		data := Data{Status: "healthy", Service: service}
		if peek != nil {
			next := peek()
			data.Next = &next
		}
		return &Output{Body: data}, nil
	})
}
