package media

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podcastify/core/internal/config"
)

func TestLocalBackend(t *testing.T) {
	dir := t.TempDir()
	b, err := NewLocalBackend(dir, "http://localhost:3000/static/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := b.Put(ctx, "podcasts/2025/01/a.jpg", bytes.NewReader([]byte("img")), 3, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/static/podcasts/2025/01/a.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "podcasts", "2025", "01", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	require.NoError(t, b.Remove(ctx, "podcasts/2025/01/a.jpg"))
	require.NoError(t, b.Remove(ctx, "podcasts/2025/01/a.jpg"), "missing files are not an error")

	_, err = b.Put(ctx, "../escape.jpg", bytes.NewReader(nil), 0, "image/jpeg")
	assert.Error(t, err)
}

func TestS3PublicURL(t *testing.T) {
	tests := []struct {
		cfg  config.S3MediaConfig
		want string
	}{
		{config.S3MediaConfig{Bucket: "pods", Region: "eu-west-1"}, "https://pods.s3.eu-west-1.amazonaws.com"},
		{config.S3MediaConfig{Bucket: "pods", Endpoint: "http://minio:9000", PathStyle: true}, "http://minio:9000/pods"},
		{config.S3MediaConfig{Bucket: "pods", Endpoint: "https://r2.example.com"}, "https://pods.r2.example.com"},
		{config.S3MediaConfig{Bucket: "pods", PublicURL: "https://cdn.example.com/"}, "https://cdn.example.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s3PublicURL(tt.cfg))
	}
}

func TestGCSPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/pods", gcsPublicURL(config.GCSMediaConfig{Bucket: "pods"}))
	assert.Equal(t, "https://img.example.com", gcsPublicURL(config.GCSMediaConfig{Bucket: "pods", PublicURL: "https://img.example.com/"}))
}

func TestS3BackendAgainstFakeServer(t *testing.T) {
	var (
		mu      sync.Mutex
		objects = map[string][]byte{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			objects[r.URL.Path] = body
			w.Header().Set("ETag", `"etag"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			delete(objects, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)

	b := NewS3Backend(config.S3MediaConfig{
		Bucket:          "pods",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		PathStyle:       true,
	})
	ctx := context.Background()

	url, err := b.Put(ctx, "ads/2025/01/x.png", bytes.NewReader([]byte("png")), 3, "image/png")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/pods/ads/2025/01/x.png", url)

	mu.Lock()
	assert.Contains(t, string(objects["/pods/ads/2025/01/x.png"]), "png")
	mu.Unlock()

	require.NoError(t, b.Remove(ctx, "ads/2025/01/x.png"))
	mu.Lock()
	assert.Empty(t, objects)
	mu.Unlock()
}

func TestRedisOrphanQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	q := NewRedisOrphanQueue(rdb)
	ctx := context.Background()
	require.NoError(t, q.Push(ctx, "a"))
	require.NoError(t, q.Push(ctx, "a"))
	require.NoError(t, q.Push(ctx, "b"))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ids, err := q.Pop(ctx, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	ids, err = q.Pop(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
