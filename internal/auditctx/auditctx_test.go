package auditctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOriginRoundTrip(t *testing.T) {
	_, ok := OriginFrom(context.Background())
	require.False(t, ok)

	ctx := WithOrigin(context.Background(), Origin{IPAddress: "203.0.113.7", UserAgent: "curl/8.0"})
	origin, ok := OriginFrom(ctx)
	require.True(t, ok)
	require.Equal(t, "203.0.113.7", origin.IPAddress)
	require.Equal(t, "curl/8.0", origin.UserAgent)
}
