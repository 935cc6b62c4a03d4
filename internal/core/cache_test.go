package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

//go:generate mockgen -source=cache.go -destination=cache_mock.go -package=core

func TestLookupCache_Fetch(t *testing.T) {
	t.Parallel()

	doc := map[string]any{"id": "w-1", "name": "Dallas"}
	encoded := []byte(`{"id":"w-1","name":"Dallas"}`)

	tests := []struct {
		name      string
		setup     func(*MockCacheRepository)
		loadDoc   map[string]any
		loadErr   error
		want      map[string]any
		wantLoads int32
		wantErr   bool
	}{
		{
			name: "shared hit skips loader",
			setup: func(remote *MockCacheRepository) {
				remote.EXPECT().Get(gomock.Any(), "pop:work_locations:w-1").Return(encoded, nil)
			},
			want:      doc,
			wantLoads: 0,
		},
		{
			name: "miss loads and writes through",
			setup: func(remote *MockCacheRepository) {
				remote.EXPECT().Get(gomock.Any(), "pop:work_locations:w-1").Return(nil, nil)
				remote.EXPECT().Set(gomock.Any(), "pop:work_locations:w-1", encoded, 5*time.Minute).Return(nil)
			},
			loadDoc:   doc,
			want:      doc,
			wantLoads: 1,
		},
		{
			name: "shared read error falls back to loader",
			setup: func(remote *MockCacheRepository) {
				remote.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
				remote.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
			},
			loadDoc:   doc,
			want:      doc,
			wantLoads: 1,
		},
		{
			name: "missing row cached as empty document",
			setup: func(remote *MockCacheRepository) {
				remote.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
				remote.EXPECT().Set(gomock.Any(), gomock.Any(), []byte(`{}`), gomock.Any()).Return(nil)
			},
			want:      map[string]any{},
			wantLoads: 1,
		},
		{
			name: "loader error is returned",
			setup: func(remote *MockCacheRepository) {
				remote.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			loadErr:   errors.New("query failed"),
			wantLoads: 1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			remote := NewMockCacheRepository(ctrl)
			tt.setup(remote)

			cache := NewLookupCache(LookupCacheOptions{Remote: remote, TTL: 5 * time.Minute, KeyPrefix: "pop:"})
			var loads atomic.Int32
			got, err := cache.Fetch(context.Background(), "work_locations:w-1", func(context.Context) (map[string]any, error) {
				loads.Add(1)
				return tt.loadDoc, tt.loadErr
			})

			assert.Equal(t, tt.wantLoads, loads.Load())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupCache_LocalTierServesRepeatReads(t *testing.T) {
	t.Parallel()

	cache := NewLookupCache(LookupCacheOptions{TTL: time.Minute})
	var loads atomic.Int32
	load := func(context.Context) (map[string]any, error) {
		loads.Add(1)
		return map[string]any{"id": "u-1"}, nil
	}

	for range 3 {
		got, err := cache.Fetch(context.Background(), "users:u-1", load)
		require.NoError(t, err)
		assert.Equal(t, "u-1", got["id"])
	}
	assert.Equal(t, int32(1), loads.Load())
}

func TestLookupCache_ConcurrentMissesShareLoad(t *testing.T) {
	t.Parallel()

	cache := NewLookupCache(LookupCacheOptions{TTL: time.Minute})
	release := make(chan struct{})
	var loads atomic.Int32
	load := func(context.Context) (map[string]any, error) {
		loads.Add(1)
		<-release
		return map[string]any{"id": "x"}, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Fetch(context.Background(), "k", load)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
}

func TestLookupCache_Flush(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	remote := NewMockCacheRepository(ctrl)
	remote.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	remote.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	remote.EXPECT().DeletePrefix(gomock.Any(), "pop:").Return(1, nil)

	cache := NewLookupCache(LookupCacheOptions{Remote: remote, KeyPrefix: "pop:"})
	var loads atomic.Int32
	load := func(context.Context) (map[string]any, error) {
		loads.Add(1)
		return map[string]any{"id": "a"}, nil
	}

	_, err := cache.Fetch(context.Background(), "a", load)
	require.NoError(t, err)

	n, err := cache.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = cache.Fetch(context.Background(), "a", load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), loads.Load())
}
