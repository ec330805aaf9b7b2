package grpcx

import (
	"context"

	"github.com/md-rashed-zaman/tutorslots/libs/httpx"
)

// RequestIDMetadataKey is the canonical key used for request id propagation over gRPC metadata.
// Lowercase is recommended by gRPC metadata conventions.
const RequestIDMetadataKey = "x-request-id"

// RequestIDFromContext shares the HTTP context key so logs carry one id
// regardless of the transport a call arrived on.
func RequestIDFromContext(ctx context.Context) string {
	return httpx.RequestIDFromContext(ctx)
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return httpx.ContextWithRequestID(ctx, id)
}
