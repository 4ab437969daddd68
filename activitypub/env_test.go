package activitypub

import (
	"bytes"
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/davecheney/linkpub/internal/config"
	"github.com/davecheney/linkpub/internal/crypto"
	"github.com/davecheney/linkpub/internal/httpsig"
	"github.com/davecheney/linkpub/internal/httpx"
	"github.com/davecheney/linkpub/internal/links"
	"github.com/davecheney/linkpub/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	require := require.New(t)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	require.NoError(err)

	sqlDB, err := db.DB()
	require.NoError(err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(db.AutoMigrate(models.AllTables()...))
	return db
}

// setupTestEnv returns an Env for the actor links@links.example.com
// serving repo.
func setupTestEnv(t *testing.T, repo links.Repository, opts ...func(*config.Config)) *Env {
	t.Helper()
	cfg := &config.Config{
		Domain:   "links.example.com",
		Username: "links",
		Summary:  "things worth reading",
	}
	cfg.SetDefaults()
	cfg.DeliveryDelay = 0
	for _, opt := range opts {
		opt(cfg)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	env, err := NewEnv(context.Background(), cfg, models.NewEnv(setupTestDB(t), log, 100), repo)
	require.NoError(t, err)
	return env
}

// withURLParams attaches chi URL parameters, given as key value pairs,
// to req.
func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// requireStatus asserts err carries the HTTP status code.
func requireStatus(t *testing.T, code int, err error) {
	t.Helper()
	var se *httpx.StatusError
	require.True(t, errors.As(err, &se), "expected a StatusError, got %v", err)
	require.Equal(t, code, se.Status())
}

// remoteServer is a remote ActivityPub server. It serves an actor
// document for any /users/<name> path and records every POST.
type remoteServer struct {
	*httptest.Server
	privateKey *rsa.PrivateKey
	publicKey  []byte

	mu       sync.Mutex
	statuses map[string]int
	posts    []*remotePost
	hold     chan struct{}
}

// remotePost is a request received by a remoteServer.
type remotePost struct {
	Request *http.Request
	Body    []byte
	Object  map[string]any
}

func newRemoteServer(t *testing.T) *remoteServer {
	t.Helper()
	kp, err := crypto.GenerateRSAKeypair()
	require.NoError(t, err)
	privateKey, err := crypto.ParseRSAPrivateKey(kp.PrivateKey)
	require.NoError(t, err)
	rs := &remoteServer{
		privateKey: privateKey,
		publicKey:  kp.PublicKey,
		statuses:   make(map[string]int),
	}
	rs.Server = httptest.NewServer(http.HandlerFunc(rs.serve))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *remoteServer) serve(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		name, ok := strings.CutPrefix(r.URL.Path, "/users/")
		if !ok || name == "" || strings.Contains(name, "/") {
			http.NotFound(w, r)
			return
		}
		rs.mu.Lock()
		hold := rs.hold
		rs.mu.Unlock()
		if hold != nil {
			<-hold
		}
		w.Header().Set("Content-Type", "application/activity+json")
		json.MarshalFull(w, rs.actor(name))
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		var obj map[string]any
		json.Unmarshal(body, &obj)
		rs.mu.Lock()
		rs.posts = append(rs.posts, &remotePost{
			Request: r.Clone(context.Background()),
			Body:    body,
			Object:  obj,
		})
		status, ok := rs.statuses[r.URL.Path]
		rs.mu.Unlock()
		if !ok {
			status = http.StatusAccepted
		}
		w.WriteHeader(status)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// respond sets the status returned for POSTs to path.
func (rs *remoteServer) respond(path string, status int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.statuses[path] = status
}

// holdActors stalls actor fetches until the returned func is called.
func (rs *remoteServer) holdActors(t *testing.T) func() {
	hold := make(chan struct{})
	rs.mu.Lock()
	rs.hold = hold
	rs.mu.Unlock()
	var once sync.Once
	release := func() { once.Do(func() { close(hold) }) }
	t.Cleanup(release)
	return release
}

// received returns the POSTs received so far.
func (rs *remoteServer) received() []*remotePost {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]*remotePost(nil), rs.posts...)
}

func (rs *remoteServer) actorID(name string) string {
	return rs.URL + "/users/" + name
}

func (rs *remoteServer) actor(name string) map[string]any {
	id := rs.actorID(name)
	return map[string]any{
		"@context":          []any{"https://www.w3.org/ns/activitystreams", "https://w3id.org/security/v1"},
		"id":                id,
		"type":              "Person",
		"preferredUsername": name,
		"name":              strings.ToUpper(name[:1]) + name[1:],
		"inbox":             id + "/inbox",
		"endpoints": map[string]any{
			"sharedInbox": rs.URL + "/inbox",
		},
		"icon": []any{map[string]any{"type": "Image", "url": rs.URL + "/avatar.png"}},
		"publicKey": map[string]any{
			"id":           id + "#main-key",
			"owner":        id,
			"publicKeyPem": string(rs.publicKey),
		},
	}
}

// activityRequest returns a POST of activity to target, signed by the
// named remote actor.
func (rs *remoteServer) activityRequest(t *testing.T, target, name string, activity map[string]any) *http.Request {
	t.Helper()
	body, err := json.Marshal(activity)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/activity+json")
	_, err = httpsig.Sign(req, rs.actorID(name)+"#main-key", rs.privateKey, body)
	require.NoError(t, err)
	return req
}

// mockFollower returns a follower on domain.
func mockFollower(name, domain string, opts ...func(*models.Follower)) *models.Follower {
	f := &models.Follower{
		ID:                fmt.Sprintf("https://%s/users/%s", domain, name),
		Inbox:             fmt.Sprintf("https://%s/users/%s/inbox", domain, name),
		PreferredUsername: name,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func withSharedInbox(inbox string) func(*models.Follower) {
	return func(f *models.Follower) {
		f.SharedInbox = inbox
	}
}
