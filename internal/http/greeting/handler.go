// Package greeting serves a fixed plain-text greeting on every GET path.
package greeting

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const (
	// Message is the exact response body.
	Message     = "Hello, World!\n"
	contentType = "text/plain"
)

// Register wires the catch-all greeting route into the provided API.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-greeting",
		Method:      http.MethodGet,
		Path:        "/*",
		Summary:     "Say hello",
		Description: "Any GET path returns the same greeting.",
		Tags:        []string{"Greeting"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Greeting",
				Content: map[string]*huma.MediaType{
					contentType: {Schema: &huma.Schema{Type: huma.TypeString, Examples: []any{Message}}},
				},
			},
		},
	}, getHandler)
}

func getHandler(_ context.Context, _ *struct{}) (*Output, error) {
	return &Output{ContentType: contentType, Body: []byte(Message)}, nil
}
