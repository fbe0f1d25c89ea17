// Package auditctx carries the origin of an HTTP request down to the audit
// trail without threading it through every service signature.
package auditctx

import "context"

// Origin describes where a request came from.
type Origin struct {
	IPAddress string
	UserAgent string
}

type originKey struct{}

// WithOrigin returns a derived context carrying the origin.
func WithOrigin(ctx context.Context, origin Origin) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFrom extracts the origin stored by WithOrigin.
func OriginFrom(ctx context.Context) (Origin, bool) {
	if ctx == nil {
		return Origin{}, false
	}
	origin, ok := ctx.Value(originKey{}).(Origin)
	return origin, ok
}
