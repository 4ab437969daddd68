package activitypub

import (
	"context"
	"errors"
	"fmt"

	"github.com/davecheney/linkpub/internal/activitypub"
	"github.com/davecheney/linkpub/models"
	"golang.org/x/exp/slog"
)

// followerStore is the subset of the follower store the dispatcher mutates.
type followerStore interface {
	Add(ctx context.Context, follower *models.Follower) (bool, error)
	Remove(ctx context.Context, id string) (bool, error)
}

// fetcher retrieves remote ActivityPub documents.
type fetcher interface {
	Fetch(ctx context.Context, uri string, obj any) error
}

// Dispatcher applies inbound activities to the follower store.
type Dispatcher struct {
	identity  *Identity
	followers followerStore
	deliverer *Deliverer
	fetcher   fetcher
	log       activityLogger
	logger    *slog.Logger
}

func NewDispatcher(identity *Identity, followers followerStore, deliverer *Deliverer, fetcher fetcher, log activityLogger, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		identity:  identity,
		followers: followers,
		deliverer: deliverer,
		fetcher:   fetcher,
		log:       log,
		logger:    logger,
	}
}

// Dispatch processes a single inbound activity.
func (d *Dispatcher) Dispatch(ctx context.Context, act activitypub.Inbound) error {
	err := d.dispatch(ctx, act)
	entry := &models.ActivityLogEntry{
		Direction:  models.Inbound,
		Type:       act.Type(),
		Actor:      act.ActorID(),
		Target:     d.identity.ID(),
		ActivityID: act.ActivityID(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if err := d.log.Append(ctx, entry); err != nil {
		d.logger.Warn("activity log", "error", err)
	}
	return err
}

func (d *Dispatcher) dispatch(ctx context.Context, act activitypub.Inbound) error {
	switch act := act.(type) {
	case *activitypub.Follow:
		return d.follow(ctx, act)
	case *activitypub.Undo:
		return d.undo(ctx, act)
	case *activitypub.Like:
		d.logger.Info("like", "actor", act.ActorID(), "object", act.Object)
		return nil
	case *activitypub.Announce:
		d.logger.Info("announce", "actor", act.ActorID(), "object", act.Object)
		return nil
	default:
		d.logger.Info("unhandled activity", "type", act.Type(), "actor", act.ActorID(), "id", act.ActivityID())
		return nil
	}
}

// follow records the sender as a follower and accepts the Follow. A Follow
// naming an object other than the local actor is rejected; one with no
// object arrived at our inbox so it can only mean the local actor. The
// follower is kept even if the Accept cannot be delivered.
func (d *Dispatcher) follow(ctx context.Context, follow *activitypub.Follow) error {
	if follow.ActorID() == "" {
		return errors.New("follow: missing actor")
	}
	actor, err := d.fetchActor(ctx, follow.ActorID())
	if err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	if follow.Object != "" && follow.Object != d.identity.ID() {
		d.logger.Info("rejecting follow", "actor", follow.ActorID(), "object", follow.Object)
		return d.deliverer.SendReject(ctx, follow, actor.Inbox)
	}
	added, err := d.followers.Add(ctx, &models.Follower{
		ID:                follow.ActorID(),
		Inbox:             actor.Inbox,
		SharedInbox:       actor.SharedInbox(),
		Name:              actor.Name,
		PreferredUsername: actor.PreferredUsername,
	})
	if err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	d.logger.Info("follow", "actor", follow.ActorID(), "new", added)
	return d.deliverer.SendAccept(ctx, follow, actor.Inbox)
}

// undo removes the sender as a follower if the undone activity is a Follow.
func (d *Dispatcher) undo(ctx context.Context, undo *activitypub.Undo) error {
	if _, ok := undo.Object.(*activitypub.Follow); !ok {
		d.logger.Info("unhandled undo", "actor", undo.ActorID(), "object", undo.ObjectID)
		return nil
	}
	removed, err := d.followers.Remove(ctx, undo.ActorID())
	if err != nil {
		return fmt.Errorf("undo: %w", err)
	}
	d.logger.Info("unfollow", "actor", undo.ActorID(), "removed", removed)
	return nil
}

// fetchActor retrieves the actor document at uri.
func (d *Dispatcher) fetchActor(ctx context.Context, uri string) (*activitypub.Actor, error) {
	var obj map[string]any
	if err := d.fetcher.Fetch(ctx, uri, &obj); err != nil {
		return nil, fmt.Errorf("fetch actor %s: %w", uri, err)
	}
	actor := activitypub.ActorFromMap(obj)
	if actor.Inbox == "" {
		return nil, fmt.Errorf("actor %s has no inbox", uri)
	}
	return actor, nil
}
