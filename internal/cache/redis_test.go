package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRedisStoreRequiresAddress(t *testing.T) {
	_, err := NewRedisStore(RedisConfig{Address: "  "})
	require.Error(t, err)
}

func TestRedisKeyPrefix(t *testing.T) {
	require.Equal(t, "classifieds:ad:1", prefixed(AdKey("1")))
	require.Equal(t, "classifieds:ad:1", prefixed("classifieds:ad:1"))
	require.Nil(t, NewRedisStoreFromClient(nil))
}
