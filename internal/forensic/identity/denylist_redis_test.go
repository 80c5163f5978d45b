//go:build integration

package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"pigate/pkg/testutil/containers"
)

func TestRedisDenylist(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	require.NoError(t, rc.FlushAll(ctx))

	d := NewRedisDenylist(rc.Client, WithDenylistKey("test:denylist"))

	ok, err := d.Contains(ctx, "192.0.2.10")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, d.Add(ctx, "192.0.2.10"))
	ok, err = d.Contains(ctx, "192.0.2.10")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, d.Remove(ctx, "192.0.2.10"))
	ok, err = d.Contains(ctx, "192.0.2.10")
	require.NoError(t, err)
	require.False(t, ok)
}
