package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/config"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	if r.Method == http.MethodPut && strings.Count(strings.Trim(r.URL.Path, "/"), "/") > 0 {
		f.objects[r.URL.Path] = body
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
	}
	w.WriteHeader(http.StatusOK)
}

func TestStorage_Upload(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	server := httptest.NewServer(fake)
	defer server.Close()

	cfg := &config.S3Config{
		Endpoint:  strings.TrimPrefix(server.URL, "http://"),
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    "listing-images",
	}

	storage, err := NewS3Storage(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	url, err := storage.Upload(context.Background(), "Front.JPG", "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, server.URL+"/listing-images/photos/"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)

	key := strings.TrimPrefix(url, server.URL)
	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Contains(t, fake.objects, key)
	assert.Contains(t, string(fake.objects[key]), "jpeg-bytes")
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".png", extension("a.PNG", "image/png"))
	assert.Equal(t, ".png", extension("noext", "image/png"))
	assert.Equal(t, "", extension("noext", "application/x-unknown"))
}
