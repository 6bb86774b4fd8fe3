package domain

import "context"

type requestIDKey struct{}
type remoteAddrKey struct{}

// NewContextWithRequestID attaches the per-request correlation id.
func NewContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the correlation id, if one was attached.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// NewContextWithRemoteAddr attaches the caller's network address.
func NewContextWithRemoteAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, remoteAddrKey{}, addr)
}

// RemoteAddrFromContext returns the caller's network address, if known.
func RemoteAddrFromContext(ctx context.Context) (string, bool) {
	addr, ok := ctx.Value(remoteAddrKey{}).(string)
	return addr, ok
}
