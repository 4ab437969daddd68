package wellknown

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/davecheney/linkpub/activitypub"
	"github.com/davecheney/linkpub/internal/config"
	"github.com/davecheney/linkpub/internal/httpx"
	"github.com/davecheney/linkpub/internal/links"
	"github.com/davecheney/linkpub/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestEnv(t *testing.T) *activitypub.Env {
	t.Helper()
	require := require.New(t)
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(err)
	sqlDB, err := db.DB()
	require.NoError(err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(db.AutoMigrate(models.AllTables()...))

	cfg := &config.Config{Domain: "links.example.com", Username: "links"}
	cfg.SetDefaults()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	env, err := activitypub.NewEnv(context.Background(), cfg, models.NewEnv(db, log, 10), links.Static{
		{ID: "a", URL: "https://example.org/a"},
		{ID: "b", URL: "https://example.org/b"},
	})
	require.NoError(err)
	return env
}

// serve routes req through handler the way the server does.
func serve(env *activitypub.Env, pattern string, fn func(*activitypub.Env, http.ResponseWriter, *http.Request) error, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get(pattern, httpx.HandlerFunc(func(*http.Request) *activitypub.Env { return env }, fn))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestWebfingerShow(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("local actor", func(t *testing.T) {
		require := require.New(t)
		rec := serve(env, "/.well-known/webfinger", WebfingerShow, httptest.NewRequest("GET", "/.well-known/webfinger?resource=acct:links@links.example.com", nil))
		require.Equal(http.StatusOK, rec.Code)
		require.Equal("application/jrd+json; charset=utf-8", rec.Header().Get("Content-Type"))
		require.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))

		var jrd map[string]any
		require.NoError(json.Unmarshal(rec.Body.Bytes(), &jrd))
		require.Equal("acct:links@links.example.com", jrd["subject"])
		self := jrd["links"].([]any)[0].(map[string]any)
		require.Equal("self", self["rel"])
		require.Equal("application/activity+json", self["type"])
		require.Equal("https://links.example.com/actor/links", self["href"])
	})

	t.Run("escaped resource", func(t *testing.T) {
		rec := serve(env, "/.well-known/webfinger", WebfingerShow, httptest.NewRequest("GET", "/.well-known/webfinger?resource=acct%3Alinks%40links.example.com", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing resource", func(t *testing.T) {
		rec := serve(env, "/.well-known/webfinger", WebfingerShow, httptest.NewRequest("GET", "/.well-known/webfinger", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	for _, resource := range []string{"acct:other@links.example.com", "acct:links@elsewhere.example", "links@links.example.com"} {
		t.Run("unknown "+resource, func(t *testing.T) {
			rec := serve(env, "/.well-known/webfinger", WebfingerShow, httptest.NewRequest("GET", "/.well-known/webfinger?resource="+resource, nil))
			require.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestHostMetaIndex(t *testing.T) {
	require := require.New(t)
	rec := serve(setupTestEnv(t), "/.well-known/host-meta", HostMetaIndex, httptest.NewRequest("GET", "/.well-known/host-meta", nil))
	require.Equal(http.StatusOK, rec.Code)
	require.Contains(rec.Body.String(), `template="https://links.example.com/.well-known/webfinger?resource={uri}"`)
}

func TestNodeInfo(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("index", func(t *testing.T) {
		require := require.New(t)
		rec := serve(env, "/.well-known/nodeinfo", NodeInfoIndex, httptest.NewRequest("GET", "/.well-known/nodeinfo", nil))
		require.Equal(http.StatusOK, rec.Code)
		require.Contains(rec.Body.String(), "https://links.example.com/nodeinfo/2.1")
	})

	for _, version := range []string{"2.0", "2.1"} {
		t.Run(version, func(t *testing.T) {
			require := require.New(t)
			rec := serve(env, "/nodeinfo/{version}", NodeInfoShow, httptest.NewRequest("GET", "/nodeinfo/"+version, nil))
			require.Equal(http.StatusOK, rec.Code)
			var doc map[string]any
			require.NoError(json.Unmarshal(rec.Body.Bytes(), &doc))
			require.Equal(version, doc["version"])
			require.Equal(float64(2), doc["usage"].(map[string]any)["localPosts"])
		})
	}

	t.Run("unknown version", func(t *testing.T) {
		rec := serve(env, "/nodeinfo/{version}", NodeInfoShow, httptest.NewRequest("GET", "/nodeinfo/1.0", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
