package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_GetSetExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryBackend().WithClock(func() time.Time { return now })

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(time.Minute)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryBackend_DelPattern(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	for _, k := range []string{
		"inventory:list:user:a:1",
		"inventory:list:user:a:2",
		"inventory:list:user:ab:1",
		"inventory:list:global:1",
	} {
		require.NoError(t, m.Set(ctx, k, []byte("x"), time.Minute))
	}

	n, err := m.DelPattern(ctx, "inventory:list:user:a:*")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"inventory:list:user:ab:1", "inventory:list:global:1"}, m.Keys())
}

func TestMemoryBackend_EscapedPattern(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	require.NoError(t, m.Set(ctx, "p:a*b:1", []byte("x"), 0))
	require.NoError(t, m.Set(ctx, "p:axxb:1", []byte("x"), 0))

	n, err := m.DelPattern(ctx, `p:a\*b:*`)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"p:axxb:1"}, m.Keys())
}

func TestMemoryBackend_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	require.NoError(t, m.Set(ctx, "k", []byte("abc"), 0))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'z'

	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryBackend_KeysSortedAndUnexpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryBackend().WithClock(func() time.Time { return now })

	require.NoError(t, m.Set(ctx, "b", []byte("x"), 0))
	require.NoError(t, m.Set(ctx, "a", []byte("x"), time.Hour))
	require.NoError(t, m.Set(ctx, "c", []byte("x"), time.Second))
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())

	now = now.Add(time.Minute)
	assert.Equal(t, []string{"a", "b"}, m.Keys())
}
