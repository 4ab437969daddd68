package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/davecheney/linkpub/activitypub"
	"github.com/davecheney/linkpub/internal/group"
	"github.com/davecheney/linkpub/internal/httpx"
	"github.com/davecheney/linkpub/wellknown"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ServeCmd struct {
	Addr string `help:"address to listen" default:":8080"`
}

func (s *ServeCmd) Run(ctx *Context) error {
	// without a key nothing can be signed, so a failure here is fatal.
	env, err := ctx.env(context.Background())
	if err != nil {
		return err
	}

	r := newRouter(env)
	if ctx.Debug {
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			route = strings.Replace(route, "/*/", "/", -1)
			fmt.Printf("%s %s\n", method, route)
			return nil
		}
		if err := chi.Walk(r, walkFunc); err != nil {
			return err
		}
	}

	svr := &http.Server{
		Addr:         s.Addr,
		Handler:      r,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	g := group.New(context.Background())
	g.AddSignals(syscall.SIGINT, syscall.SIGTERM)
	g.Add(func(gctx context.Context) error {
		errCh := make(chan error, 1)
		go func() {
			env.Log().Info("listening", "addr", s.Addr, "actor", env.Identity.ID())
			errCh <- svr.ListenAndServe()
		}()
		select {
		case err := <-errCh:
			return err
		case <-gctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return svr.Shutdown(shutdownCtx)
		}
	})
	err = g.Wait()
	// let activities that were acknowledged finish processing.
	env.Inbox.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func newRouter(env *activitypub.Env) chi.Router {
	envFn := func(*http.Request) *activitypub.Env { return env }

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/.well-known", func(r chi.Router) {
		r.Get("/webfinger", httpx.HandlerFunc(envFn, wellknown.WebfingerShow))
		r.Get("/host-meta", httpx.HandlerFunc(envFn, wellknown.HostMetaIndex))
		r.Get("/nodeinfo", httpx.HandlerFunc(envFn, wellknown.NodeInfoIndex))
	})
	r.Get("/nodeinfo/{version}", httpx.HandlerFunc(envFn, wellknown.NodeInfoShow))

	r.Route("/actor/{username}", func(r chi.Router) {
		r.Get("/", httpx.HandlerFunc(envFn, activitypub.ActorShow))
		r.Get("/outbox", httpx.HandlerFunc(envFn, activitypub.OutboxShow))
		r.Get("/followers", httpx.HandlerFunc(envFn, activitypub.FollowersShow))
		r.Get("/following", httpx.HandlerFunc(envFn, activitypub.FollowingShow))
		r.Post("/inbox", httpx.HandlerFunc(envFn, activitypub.ActorInboxCreate))
	})
	r.Post("/inbox", httpx.HandlerFunc(envFn, activitypub.InboxCreate))
	r.Get("/note/{id}", httpx.HandlerFunc(envFn, activitypub.NoteShow))

	r.Get("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "User-agent: *\nDisallow: /")
	})
	return r
}
