package activitypub

import (
	"errors"
)

// ErrMissingType is returned by Parse when an activity has no type.
var ErrMissingType = errors.New("activity has no type")

// Inbound is an activity received by an inbox. It is one of *Follow,
// *Undo, *Like, *Announce or *Unhandled.
type Inbound interface {
	// Type returns the ActivityStreams type of the activity.
	Type() string
	// ActivityID returns the id of the activity, which may be empty.
	ActivityID() string
	// ActorID returns the id of the actor that performed the activity.
	ActorID() string
	// Raw returns the activity as it was received.
	Raw() map[string]any
}

type envelope struct {
	id    string
	actor string
	raw   map[string]any
}

func (e *envelope) ActivityID() string  { return e.id }
func (e *envelope) ActorID() string     { return e.actor }
func (e *envelope) Raw() map[string]any { return e.raw }

// Follow is a request by Actor to follow Object.
type Follow struct {
	envelope
	// Object is the id of the actor to be followed.
	Object string
}

func (*Follow) Type() string { return "Follow" }

// Undo reverses a previous activity.
type Undo struct {
	envelope
	// Object is the activity being undone. It is nil when the sender
	// referenced the activity by id rather than embedding it.
	Object Inbound
	// ObjectID is the id of the activity being undone.
	ObjectID string
}

func (*Undo) Type() string { return "Undo" }

// Like is a favourite of Object.
type Like struct {
	envelope
	Object string
}

func (*Like) Type() string { return "Like" }

// Announce is a boost of Object.
type Announce struct {
	envelope
	Object string
}

func (*Announce) Type() string { return "Announce" }

// Unhandled is any activity type this server does not act upon.
type Unhandled struct {
	envelope
	typ string
}

func (u *Unhandled) Type() string { return u.typ }

// Parse converts a decoded JSON-LD activity into its Inbound variant.
// Parse only fails if the activity has no type.
func Parse(obj map[string]any) (Inbound, error) {
	typ := typeFromAny(obj["type"])
	if typ == "" {
		return nil, ErrMissingType
	}
	env := envelope{
		id:    stringFromAny(obj["id"]),
		actor: idFromAny(obj["actor"]),
		raw:   obj,
	}
	switch typ {
	case "Follow":
		return &Follow{envelope: env, Object: idFromAny(obj["object"])}, nil
	case "Undo":
		undo := &Undo{envelope: env, ObjectID: idFromAny(obj["object"])}
		if inner, err := Parse(mapFromAny(obj["object"])); err == nil {
			undo.Object = inner
		}
		return undo, nil
	case "Like":
		return &Like{envelope: env, Object: idFromAny(obj["object"])}, nil
	case "Announce":
		return &Announce{envelope: env, Object: idFromAny(obj["object"])}, nil
	default:
		return &Unhandled{envelope: env, typ: typ}, nil
	}
}

// ActorFromMap extracts the fields of a remote actor document that are
// needed to deliver to it. Remote documents vary too much to decode
// strictly.
func ActorFromMap(obj map[string]any) *Actor {
	actor := &Actor{
		Type:              typeFromAny(obj["type"]),
		ID:                stringFromAny(obj["id"]),
		Inbox:             stringFromAny(obj["inbox"]),
		Outbox:            stringFromAny(obj["outbox"]),
		PreferredUsername: stringFromAny(obj["preferredUsername"]),
		Name:              stringFromAny(obj["name"]),
		Summary:           stringFromAny(obj["summary"]),
		PublicKey: PublicKey{
			ID:           stringFromAny(mapFromAny(obj["publicKey"])["id"]),
			Owner:        stringFromAny(mapFromAny(obj["publicKey"])["owner"]),
			PublicKeyPem: stringFromAny(mapFromAny(obj["publicKey"])["publicKeyPem"]),
		},
	}
	if shared := stringFromAny(mapFromAny(obj["endpoints"])["sharedInbox"]); shared != "" {
		actor.Endpoints = &Endpoints{SharedInbox: shared}
	}
	return actor
}

func stringFromAny(v any) string {
	s, _ := v.(string)
	return s
}

func mapFromAny(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// idFromAny returns v if it is a string, or the id of v if it is an object.
func idFromAny(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case map[string]any:
		return stringFromAny(v["id"])
	default:
		return ""
	}
}

// typeFromAny returns the type of an object. JSON-LD permits type to be an
// array, in which case the first string is used.
func typeFromAny(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []any:
		for _, t := range v {
			if s, ok := t.(string); ok {
				return s
			}
		}
	}
	return ""
}
