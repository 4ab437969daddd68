package activitypub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/davecheney/linkpub/internal/activitypub"
	"github.com/davecheney/linkpub/internal/config"
	"github.com/davecheney/linkpub/internal/httpx"
	"github.com/davecheney/linkpub/internal/links"
	"github.com/davecheney/linkpub/models"
	"github.com/go-chi/chi/v5"
)

// Env is the environment shared by the federation handlers.
type Env struct {
	*models.Env

	Config    *config.Config
	Links     links.Repository
	Identity  *Identity
	Composer  *Composer
	Client    *activitypub.Client
	Deliverer *Deliverer
	Inbox     *Inbox
}

// NewEnv wires the federation components together. It loads, or creates,
// the local actor's key pair; failure to do so is fatal as nothing can be
// signed without it.
func NewEnv(ctx context.Context, cfg *config.Config, env *models.Env, repo links.Repository) (*Env, error) {
	kp, err := env.Keys.Get(ctx)
	if err != nil {
		return nil, err
	}
	privateKey, err := kp.PrivKey()
	if err != nil {
		return nil, err
	}
	identity := NewIdentity(cfg, kp.PublicKey)
	client := activitypub.NewClient(identity.KeyID(), privateKey, cfg.RequestTimeout)
	deliverer := NewDeliverer(identity, client, env.Followers, env.ActivityLog, env.Logger, cfg.DeliveryDelay)
	dispatcher := NewDispatcher(identity, env.Followers, deliverer, client, env.ActivityLog, env.Logger)
	return &Env{
		Env:       env,
		Config:    cfg,
		Links:     repo,
		Identity:  identity,
		Composer:  NewComposer(identity, cfg.SiteURL),
		Client:    client,
		Deliverer: deliverer,
		Inbox:     NewInbox(dispatcher, client, cfg.VerifySignatures, env.Logger),
	}, nil
}

// requireLocalActor returns a 404 unless the {username} URL parameter
// names the local actor.
func requireLocalActor(env *Env, r *http.Request) error {
	if username := chi.URLParam(r, "username"); username != env.Config.Username {
		return httpx.Error(http.StatusNotFound, fmt.Errorf("no such actor: %q", username))
	}
	return nil
}

// pageParams are the query parameters of a collection.
type pageParams struct {
	Page *int `schema:"page"`
}

// parsePage returns the requested page number, or nil if the summary of
// the collection was requested.
func parsePage(r *http.Request) (*int, error) {
	var params pageParams
	if err := httpx.Params(r, &params); err != nil {
		return nil, err
	}
	if params.Page != nil && *params.Page < 1 {
		return nil, httpx.Error(http.StatusBadRequest, errors.New("page must be 1 or greater"))
	}
	return params.Page, nil
}

// trimKeyId removes the #main-key suffix from the key id.
func trimKeyId(id string) string {
	if i := strings.Index(id, "#"); i != -1 {
		return id[:i]
	}
	return id
}
