// Package webfinger implements acct: identifiers and the JSON Resource
// Descriptor documents of RFC 7033.
package webfinger

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/carlmjohnson/requests"
)

// Webfinger is a JSON Resource Descriptor.
type Webfinger struct {
	Subject string   `json:"subject"`
	Aliases []string `json:"aliases,omitempty"`
	Links   []Link   `json:"links"`
}

// ActivityPub returns the href of the self link of type application/activity+json.
func (wf *Webfinger) ActivityPub() (string, error) {
	for _, link := range wf.Links {
		if link.Rel == "self" && link.Type == "application/activity+json" {
			return link.Href, nil
		}
	}
	return "", fmt.Errorf("no ActivityPub link found")
}

type Link struct {
	Rel      string `json:"rel"`
	Type     string `json:"type,omitempty"`
	Href     string `json:"href,omitempty"`
	Template string `json:"template,omitempty"`
}

type Acct struct {
	User string
	Host string
}

func (a *Acct) String() string {
	return "acct:" + a.User + "@" + a.Host
}

// Webfinger returns the URL for the webfinger resource for this Acct.
func (a *Acct) Webfinger() string {
	return "https://" + a.Host + "/.well-known/webfinger?resource=" + url.QueryEscape(a.String())
}

// ID returns the URL for the actor document of this Acct.
func (a *Acct) ID() string {
	return "https://" + a.Host + "/actor/" + a.User
}

// KeyID returns the id of the actor's public key.
func (a *Acct) KeyID() string {
	return a.ID() + "#main-key"
}

// Followers returns the URL for the followers collection for this Acct.
func (a *Acct) Followers() string {
	return a.ID() + "/followers"
}

// Following returns the URL for the following collection for this Acct.
func (a *Acct) Following() string {
	return a.ID() + "/following"
}

// Inbox returns the URL for the inbox collection for this Acct.
func (a *Acct) Inbox() string {
	return a.ID() + "/inbox"
}

// Outbox returns the URL for the outbox collection for this Acct.
func (a *Acct) Outbox() string {
	return a.ID() + "/outbox"
}

// SharedInbox returns the URL for the shared inbox of this Acct's server.
func (a *Acct) SharedInbox() string {
	return "https://" + a.Host + "/inbox"
}

// Note returns the URL of the note with the given id.
func (a *Acct) Note(id string) string {
	return "https://" + a.Host + "/note/" + url.PathEscape(id)
}

// Activity returns the URL of the activity with the given id.
func (a *Acct) Activity(id string) string {
	return "https://" + a.Host + "/activity/" + url.PathEscape(id)
}

// Fetch resolves this Acct via its server's webfinger endpoint.
func (a *Acct) Fetch(ctx context.Context) (*Webfinger, error) {
	var webfinger Webfinger
	err := requests.URL(a.Webfinger()).
		Accept("application/jrd+json").
		CheckContentType("application/jrd+json", "application/json").
		ToJSON(&webfinger).
		Fetch(ctx)
	return &webfinger, err
}

// Parse parses an account identifier of the form acct:user@host, @user@host
// or user@host.
func Parse(query string) (*Acct, error) {
	// In case the handle has been URL encoded
	query, err := url.QueryUnescape(query)
	if err != nil {
		return nil, err
	}
	query = strings.TrimPrefix(query, "acct:")
	// Remove the leading @, if there's one.
	query = strings.TrimPrefix(query, "@")

	user, host, ok := strings.Cut(query, "@")
	if !ok || user == "" || host == "" || strings.Contains(host, "@") {
		return nil, fmt.Errorf("invalid acct: %q", query)
	}
	return &Acct{
		User: user,
		Host: host,
	}, nil
}
