// Package activitypub contains the ActivityStreams wire types and a signing
// ActivityPub client.
package activitypub

import (
	"time"
)

const (
	// ActivityStreams is the JSON-LD context of every document.
	ActivityStreams = "https://www.w3.org/ns/activitystreams"
	// Security is the JSON-LD context that defines publicKey.
	Security = "https://w3id.org/security/v1"
	// Public is the special collection addressing everyone.
	Public = "https://www.w3.org/ns/activitystreams#Public"
)

// Actor is an ActivityStreams Actor document.
type Actor struct {
	Context           any        `json:"@context,omitempty"`
	Type              string     `json:"type"`
	ID                string     `json:"id"`
	Inbox             string     `json:"inbox"`
	Outbox            string     `json:"outbox,omitempty"`
	Followers         string     `json:"followers,omitempty"`
	Following         string     `json:"following,omitempty"`
	PreferredUsername string     `json:"preferredUsername,omitempty"`
	Name              string     `json:"name,omitempty"`
	Summary           string     `json:"summary,omitempty"`
	URL               string     `json:"url,omitempty"`
	Icon              *Image     `json:"icon,omitempty"`
	Endpoints         *Endpoints `json:"endpoints,omitempty"`

	ManuallyApprovesFollowers bool `json:"manuallyApprovesFollowers"`
	Discoverable              bool `json:"discoverable"`

	PublicKey PublicKey `json:"publicKey"`
}

// SharedInbox returns the actor's shared inbox, if it has one.
func (a *Actor) SharedInbox() string {
	if a.Endpoints == nil {
		return ""
	}
	return a.Endpoints.SharedInbox
}

// Endpoints holds the server wide endpoints of an Actor.
type Endpoints struct {
	SharedInbox string `json:"sharedInbox,omitempty"`
}

// PublicKey is the public half of an Actor's signing key.
type PublicKey struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	PublicKeyPem string `json:"publicKeyPem"`
}

// Image is an ActivityStreams Image
type Image struct {
	Type      string `json:"type"`
	MediaType string `json:"mediaType,omitempty"`
	URL       string `json:"url"`
}

// Hashtag is an ActivityStreams Hashtag
type Hashtag struct {
	Type string `json:"type"`
	Href string `json:"href"`
	Name string `json:"name"`
}

// Link is an ActivityStreams Link, used as the attachment of a Note.
type Link struct {
	Type      string `json:"type"`
	Href      string `json:"href"`
	MediaType string `json:"mediaType,omitempty"`
	Name      string `json:"name,omitempty"`
}

// Note is an ActivityStreams Note.
type Note struct {
	Context      any       `json:"@context,omitempty"`
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	AttributedTo string    `json:"attributedTo"`
	Published    time.Time `json:"published"`
	URL          string    `json:"url,omitempty"`
	Content      string    `json:"content"`
	To           []string  `json:"to"`
	CC           []string  `json:"cc"`
	Tag          []Hashtag `json:"tag"`
	Attachment   []Link    `json:"attachment,omitempty"`
	Sensitive    bool      `json:"sensitive"`
}

// Activity is an outbound ActivityStreams Activity.
// https://www.w3.org/TR/activitystreams-core/#activities
type Activity struct {
	Context   any      `json:"@context,omitempty"`
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Actor     string   `json:"actor"`
	Published string   `json:"published,omitempty"`
	To        []string `json:"to,omitempty"`
	CC        []string `json:"cc,omitempty"`
	// Object is a *Note for Create, the inbound Follow for Accept and Reject.
	Object any `json:"object"`
}

// OrderedCollection is the summary half of the two step collection pattern;
// it never carries items, only links to its pages.
type OrderedCollection struct {
	Context    any    `json:"@context,omitempty"`
	ID         string `json:"id"`
	Type       string `json:"type"`
	TotalItems int    `json:"totalItems"`
	First      string `json:"first,omitempty"`
	Last       string `json:"last,omitempty"`
}

// OrderedCollectionPage is one page of an OrderedCollection.
type OrderedCollectionPage struct {
	Context      any    `json:"@context,omitempty"`
	ID           string `json:"id"`
	Type         string `json:"type"`
	PartOf       string `json:"partOf"`
	TotalItems   int    `json:"totalItems"`
	Prev         string `json:"prev,omitempty"`
	Next         string `json:"next,omitempty"`
	OrderedItems []any  `json:"orderedItems"`
}
