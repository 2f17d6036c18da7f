package sidecar

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	labels := []string{"Liga", "País", "<Odd>"}

	data, err := encode(labels)
	require.NoError(t, err)
	assert.Equal(t, `{"headers":["Liga","País","<Odd>"]}`, string(data))

	got, err := decode(data)
	require.NoError(t, err)
	assert.Equal(t, labels, got)
}

func TestEncode_NilIsEmptyArray(t *testing.T) {
	data, err := encode(nil)
	require.NoError(t, err)
	assert.Equal(t, `{"headers":[]}`, string(data))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "strings", input: `{"headers":["a","b"]}`, want: []string{"a", "b"}},
		{name: "empty array", input: `{"headers":[]}`, want: []string{}},
		{name: "non-string entries kept as text", input: `{"headers":["a",1,true]}`, want: []string{"a", "1", "true"}},
		{name: "missing member", input: `{"other":[]}`, wantErr: true},
		{name: "not an array", input: `{"headers":"a"}`, wantErr: true},
		{name: "not json", input: `headers`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decode([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ============================================================================
// FileStore Tests
// ============================================================================

func TestFileStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "headers.json")
	s := NewFileStore(path)

	assert.Equal(t, []string{}, s.LoadHeaders(ctx), "missing file yields no labels")

	require.NoError(t, s.SaveHeaders(ctx, []string{"Liga", "Casa"}))
	assert.Equal(t, []string{"Liga", "Casa"}, s.LoadHeaders(ctx))

	require.NoError(t, s.SaveHeaders(ctx, []string{"Visitante"}))
	assert.Equal(t, []string{"Visitante"}, s.LoadHeaders(ctx))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "headers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"headers":`), 0o644))

	assert.Equal(t, []string{}, NewFileStore(path).LoadHeaders(ctx))
}

func TestFileStore_SaveFailure(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "headers.json")
	require.NoError(t, os.MkdirAll(filepath.Join(path, "x"), 0o755))

	assert.Error(t, NewFileStore(path).SaveHeaders(ctx, []string{"a"}))
}

// ============================================================================
// RedisStore Tests
// ============================================================================

func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	s, err := NewRedisStore(ctx, url, "matchboard:test:headers")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.client.Del(ctx, s.key).Err())

	assert.Equal(t, []string{}, s.LoadHeaders(ctx))

	require.NoError(t, s.SaveHeaders(ctx, []string{"Liga", "Média Gols"}))
	assert.Equal(t, []string{"Liga", "Média Gols"}, s.LoadHeaders(ctx))

	require.NoError(t, s.client.Set(ctx, s.key, "garbage", 0).Err())
	assert.Equal(t, []string{}, s.LoadHeaders(ctx))

	require.NoError(t, s.client.Del(ctx, s.key).Err())
}

func TestNewRedisStore_BadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not-a-redis-url", "")
	assert.Error(t, err)
}

func TestNewRedisStoreWithClient_DefaultKey(t *testing.T) {
	s := NewRedisStoreWithClient(nil, "")
	assert.Equal(t, DefaultRedisKey, s.key)
}
