// Package counter serves the process-local counter on every GET path.
package counter

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/huma-hashchain/internal/platform/logging"
)

// Source hands out counter values; each call must return a distinct value.
type Source interface {
	Next() uint64
}

// Register wires the catch-all counter route into the provided API.
func Register(api huma.API, src Source) {
	huma.Register(api, huma.Operation{
		OperationID: "get-counter",
		Method:      http.MethodGet,
		Path:        "/*",
		Summary:     "Take the next counter value",
		Description: "Every GET consumes one value. Values start at 1 and never repeat within a process.",
		Tags:        []string{"Counter"},
	}, func(ctx context.Context, _ *struct{}) (*Output, error) {
		v := src.Next()
		applog.LogInfo(ctx, "counter value issued", zap.Uint64("value", v))
		out := &Output{}
		out.Body.Data = v
		return out, nil
	})
}
