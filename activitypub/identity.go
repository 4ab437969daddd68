package activitypub

import (
	"github.com/davecheney/linkpub/internal/activitypub"
	"github.com/davecheney/linkpub/internal/config"
	"github.com/davecheney/linkpub/internal/webfinger"
)

// Identity describes the single local actor. Its documents are a pure
// function of the configuration and the actor's public key.
type Identity struct {
	cfg          *config.Config
	acct         *webfinger.Acct
	publicKeyPem string
}

// NewIdentity returns the Identity of the actor configured in cfg.
func NewIdentity(cfg *config.Config, publicKeyPem []byte) *Identity {
	return &Identity{
		cfg: cfg,
		acct: &webfinger.Acct{
			User: cfg.Username,
			Host: cfg.Domain,
		},
		publicKeyPem: string(publicKeyPem),
	}
}

// Acct returns the acct of the local actor.
func (i *Identity) Acct() *webfinger.Acct { return i.acct }

// ID returns the URI of the local actor.
func (i *Identity) ID() string { return i.acct.ID() }

// KeyID returns the id of the local actor's public key.
func (i *Identity) KeyID() string { return i.acct.KeyID() }

// Actor returns the local actor's profile document.
func (i *Identity) Actor() *activitypub.Actor {
	actor := &activitypub.Actor{
		Context:           []any{activitypub.ActivityStreams, activitypub.Security},
		Type:              "Person",
		ID:                i.acct.ID(),
		Inbox:             i.acct.Inbox(),
		Outbox:            i.acct.Outbox(),
		Followers:         i.acct.Followers(),
		Following:         i.acct.Following(),
		PreferredUsername: i.cfg.Username,
		Name:              i.cfg.DisplayName,
		Summary:           i.cfg.Summary,
		URL:               i.cfg.SiteURL,
		Endpoints: &activitypub.Endpoints{
			SharedInbox: i.acct.SharedInbox(),
		},
		Discoverable: true,
		PublicKey: activitypub.PublicKey{
			ID:           i.acct.KeyID(),
			Owner:        i.acct.ID(),
			PublicKeyPem: i.publicKeyPem,
		},
	}
	if i.cfg.IconURL != "" {
		actor.Icon = &activitypub.Image{
			Type: "Image",
			URL:  i.cfg.IconURL,
		}
	}
	return actor
}

// WebFinger returns the JRD describing the local actor, or nil if resource
// is not exactly acct:<username>@<domain>.
func (i *Identity) WebFinger(resource string) *webfinger.Webfinger {
	if resource != i.acct.String() {
		return nil
	}
	return &webfinger.Webfinger{
		Subject: i.acct.String(),
		Aliases: []string{i.acct.ID()},
		Links: []webfinger.Link{{
			Rel:  "self",
			Type: "application/activity+json",
			Href: i.acct.ID(),
		}, {
			Rel:  "http://webfinger.net/rel/profile-page",
			Type: "text/html",
			Href: i.cfg.SiteURL,
		}},
	}
}
