package suppress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWindow(t *testing.T) {
	now := time.Date(2023, 2, 27, 21, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.Now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := m.Allow(ctx, "spam:a@b.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = m.Allow(ctx, "spam:a@b.com")
	assert.False(t, ok)

	ok, _ = m.Allow(ctx, "spam:c@d.com")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _ = m.Allow(ctx, "spam:a@b.com")
	assert.True(t, ok)
}

func TestMemoryZeroWindow(t *testing.T) {
	m := NewMemory(0)
	for i := 0; i < 3; i++ {
		ok, err := m.Allow(context.Background(), "k")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestMemoryPrunesExpired(t *testing.T) {
	now := time.Now()
	m := NewMemory(time.Second)
	m.Now = func() time.Time { return now }

	_, _ = m.Allow(context.Background(), "a")
	_, _ = m.Allow(context.Background(), "b")
	now = now.Add(2 * time.Second)
	_, _ = m.Allow(context.Background(), "c")

	assert.Len(t, m.seen, 1)
}

type fakeSetNX struct {
	keys   []string
	ttl    time.Duration
	result bool
	err    error
}

func (f *fakeSetNX) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.keys = append(f.keys, key)
	f.ttl = expiration
	return redis.NewBoolResult(f.result, f.err)
}

func TestRedisAllow(t *testing.T) {
	tests := []struct {
		name    string
		client  *fakeSetNX
		want    bool
		wantErr bool
	}{
		{"first alert", &fakeSetNX{result: true}, true, false},
		{"repeat", &fakeSetNX{result: false}, false, false},
		{"redis down", &fakeSetNX{err: errors.New("connection refused")}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Redis{Client: tt.client, Prefix: "bouncemail:suppress:", Window: time.Hour}

			ok, err := r.Allow(context.Background(), "spam:a@b.com")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, []string{"bouncemail:suppress:spam:a@b.com"}, tt.client.keys)
			assert.Equal(t, time.Hour, tt.client.ttl)
		})
	}
}

func TestRedisZeroWindowSkipsClient(t *testing.T) {
	client := &fakeSetNX{}
	r := &Redis{Client: client}

	ok, err := r.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, client.keys)
}
