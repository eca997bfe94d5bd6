// Package reqctx carries per-request metadata through context.Context so that
// services can correlate logs and events without depending on the transport.
package reqctx

import (
	"context"
	"time"
)

// Info is the request metadata attached by the HTTP middleware.
type Info struct {
	RequestID string
	Method    string
	Path      string
	UserAgent string
	IP        string
	StartedAt time.Time
	UserID    string
	Role      string
}

type ctxKey struct{}

// With returns a copy of ctx carrying info.
func With(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// From returns the request metadata, or nil outside a request.
func From(ctx context.Context) *Info {
	info, _ := ctx.Value(ctxKey{}).(*Info)
	return info
}

// RequestID returns the request id, or "system" for background work.
func RequestID(ctx context.Context) string {
	if info := From(ctx); info != nil && info.RequestID != "" {
		return info.RequestID
	}
	return "system"
}

// UserID returns the caller's user id when one was propagated.
func UserID(ctx context.Context) string {
	if info := From(ctx); info != nil {
		return info.UserID
	}
	return ""
}
