package sensetime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakePlatform is a minimal Sensetime stand-in: tokens are issued at /login
// and only the most recent one is accepted for image fetches.
type fakePlatform struct {
	logins     int
	fetches    int
	imageBytes []byte
}

func (p *fakePlatform) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		p.logins++
		json.NewEncoder(w).Encode(map[string]string{"token": p.currentToken()})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		p.fetches++
		if r.Header.Get("Authorization") != "Bearer "+p.currentToken() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write(p.imageBytes)
	})
	return mux
}

func (p *fakePlatform) currentToken() string {
	return fmt.Sprintf("token-%d", p.logins)
}

func setupClient(t *testing.T, platform *fakePlatform) (*Client, *miniredis.Miniredis) {
	server := httptest.NewServer(platform.handler())
	t.Cleanup(server.Close)

	mr := miniredis.RunT(t)
	kv := store.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	return NewClient(server.URL, "user", "secret", kv, time.Hour, zap.NewNop()), mr
}

func TestFetchAsBase64(t *testing.T) {
	platform := &fakePlatform{imageBytes: []byte("jpeg-bytes")}
	client, mr := setupClient(t, platform)

	got, err := client.FetchAsBase64(context.Background(), "/img/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")), got)
	assert.Equal(t, 1, platform.logins)

	// The encoded image lands in the cache under the path key.
	cached, err := mr.Get(imageCacheKeyPrefix + "/img/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, got, cached)
}

func TestFetchAsBase64_EmptyPath(t *testing.T) {
	platform := &fakePlatform{}
	client, _ := setupClient(t, platform)

	got, err := client.FetchAsBase64(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "", got)
	assert.Equal(t, 0, platform.fetches)
}

func TestFetchAsBase64_CacheHitSkipsPlatform(t *testing.T) {
	platform := &fakePlatform{imageBytes: []byte("jpeg-bytes")}
	client, mr := setupClient(t, platform)

	require.NoError(t, mr.Set(imageCacheKeyPrefix+"/img/a.jpg", "precached"))

	got, err := client.FetchAsBase64(context.Background(), "/img/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "precached", got)
	assert.Equal(t, 0, platform.logins)
	assert.Equal(t, 0, platform.fetches)
}

func TestFetchAsBase64_ReloginOnExpiredToken(t *testing.T) {
	platform := &fakePlatform{imageBytes: []byte("jpeg-bytes")}
	client, _ := setupClient(t, platform)

	// Seed a token the platform no longer accepts.
	client.holder.set("stale-token")

	got, err := client.FetchAsBase64(context.Background(), "/img/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")), got)
	assert.Equal(t, 1, platform.logins)
	assert.Equal(t, 2, platform.fetches)
}
