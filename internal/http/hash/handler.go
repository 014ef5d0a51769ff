// Package hash serves SHA-256 digests of values fetched from the counter service.
package hash

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/janisto/huma-hashchain/internal/api"
	applog "github.com/janisto/huma-hashchain/internal/platform/logging"
	"github.com/janisto/huma-hashchain/internal/platform/respond"
	"github.com/janisto/huma-hashchain/internal/service/digest"
	"github.com/janisto/huma-hashchain/internal/service/persistence"
)

const (
	msgUnavailable = "Persistence Store Unavailable"
	msgStoreError  = "Persistence Store Error"
)

// Register wires the catch-all hash route into the provided API.
func Register(api huma.API, svc persistence.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "get-hash",
		Method:      http.MethodGet,
		Path:        "/*",
		Summary:     "Hash the next counter value",
		Description: "Fetches a value from the counter service and returns it with its SHA-256 digest.",
		Tags:        []string{"Hash"},
		Errors:      []int{http.StatusInternalServerError, http.StatusBadGateway},
	}, func(ctx context.Context, _ *struct{}) (*Output, error) {
		return getHandler(ctx, svc)
	})
}

func getHandler(ctx context.Context, svc persistence.Service) (*Output, error) {
	v, err := svc.Next(ctx)
	if err != nil {
		return nil, mapUpstreamError(ctx, err)
	}
	h := digest.Sum(v)
	applog.LogInfo(ctx, "hash computed", zap.Uint64("number", v), zap.String("hash", h))
	return &Output{Body: api.HashResponse{Data: api.HashData{Number: v, Hash: h}}}, nil
}

// mapUpstreamError renders counter failures: unreachable as 502, everything
// else as 500 with the upstream status or decode failure in the message.
func mapUpstreamError(ctx context.Context, err error) error {
	var ue *persistence.UpstreamError
	if !errors.As(err, &ue) {
		return respond.Error(ctx, http.StatusInternalServerError, fmt.Sprintf("%s: %v", msgStoreError, err), err)
	}
	switch ue.Kind {
	case persistence.UpstreamErrorKindUnavailable:
		if ue.Timeout {
			return respond.Error(ctx, http.StatusBadGateway, fmt.Sprintf("%s: timed out: %s", msgUnavailable, describeCause(ue)), err)
		}
		return respond.Error(ctx, http.StatusBadGateway, fmt.Sprintf("%s: %s", msgUnavailable, describeCause(ue)), err)
	case persistence.UpstreamErrorKindStatus:
		return respond.Error(ctx, http.StatusInternalServerError, fmt.Sprintf("%s: %d: %s", msgStoreError, ue.Status, ue.Reason), err)
	default:
		return respond.Error(ctx, http.StatusInternalServerError, fmt.Sprintf("%s: malformed response: %s", msgStoreError, describeCause(ue)), err)
	}
}

func describeCause(ue *persistence.UpstreamError) string {
	if cause := ue.Cause(); cause != nil {
		return cause.Error()
	}
	return string(ue.Kind)
}
