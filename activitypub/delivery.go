package activitypub

import (
	"context"
	"fmt"
	"time"

	"github.com/davecheney/linkpub/internal/activitypub"
	"github.com/davecheney/linkpub/internal/algorithms"
	"github.com/davecheney/linkpub/models"
	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// followerLister is the subset of the follower store delivery needs.
type followerLister interface {
	List(ctx context.Context) ([]*models.Follower, error)
}

// activityLogger records federation events.
type activityLogger interface {
	Append(ctx context.Context, entry *models.ActivityLogEntry) error
}

// Deliverer sends the local actor's activities to remote inboxes.
type Deliverer struct {
	identity  *Identity
	client    *activitypub.Client
	followers followerLister
	log       activityLogger
	logger    *slog.Logger
	delay     time.Duration

	// sleep is called between deliveries to successive inboxes.
	sleep func(time.Duration)
}

func NewDeliverer(identity *Identity, client *activitypub.Client, followers followerLister, log activityLogger, logger *slog.Logger, delay time.Duration) *Deliverer {
	return &Deliverer{
		identity:  identity,
		client:    client,
		followers: followers,
		log:       log,
		logger:    logger,
		delay:     delay,
		sleep:     time.Sleep,
	}
}

// DeliveryFailure describes one inbox that did not accept an activity.
type DeliveryFailure struct {
	Inbox string `json:"inbox"`
	// Status is the HTTP status returned by the inbox, or zero if the
	// request did not complete.
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// DeliverySummary is the outcome of a fan out to every follower.
type DeliverySummary struct {
	Total    int               `json:"total"`
	Success  int               `json:"success"`
	Failed   int               `json:"failed"`
	Failures []DeliveryFailure `json:"failures"`
}

// SendToInbox signs and POSTs activity to inbox. An error is returned only
// if the request could not be completed; a rejection by the remote server
// is reported in the Response.
func (d *Deliverer) SendToInbox(ctx context.Context, inbox string, activity *activitypub.Activity) (*activitypub.Response, error) {
	body, err := json.Marshal(activity)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", activity.Type, err)
	}
	resp, err := d.client.Post(ctx, inbox, body)
	d.record(ctx, inbox, activity, resp, err)
	return resp, err
}

// DeliverToFollowers sends activity once to each distinct effective inbox
// of the current followers, pausing between inboxes. Failed deliveries are
// counted and logged but not retried.
func (d *Deliverer) DeliverToFollowers(ctx context.Context, activity *activitypub.Activity) (*DeliverySummary, error) {
	followers, err := d.followers.List(ctx)
	if err != nil {
		return nil, err
	}
	inboxes := uniqueInboxes(followers)
	summary := &DeliverySummary{
		Total:    len(inboxes),
		Failures: []DeliveryFailure{},
	}
	for i, inbox := range inboxes {
		if i > 0 && d.delay > 0 {
			d.sleep(d.delay)
		}
		resp, err := d.SendToInbox(ctx, inbox, activity)
		switch {
		case err != nil:
			summary.Failed++
			summary.Failures = append(summary.Failures, DeliveryFailure{Inbox: inbox, Error: err.Error()})
		case !resp.OK():
			summary.Failed++
			summary.Failures = append(summary.Failures, DeliveryFailure{Inbox: inbox, Status: resp.StatusCode})
		default:
			summary.Success++
		}
	}
	d.logger.Info("delivered", "activity", activity.ID, "total", summary.Total, "success", summary.Success, "failed", summary.Failed)
	return summary, nil
}

// uniqueInboxes returns the effective inboxes of followers in the order
// they were first seen.
func uniqueInboxes(followers []*models.Follower) []string {
	inboxes := algorithms.Map(followers, (*models.Follower).EffectiveInbox)
	return algorithms.Uniq(algorithms.Filter(inboxes, func(inbox string) bool { return inbox != "" }))
}

// SendAccept accepts follow by replying to inbox.
func (d *Deliverer) SendAccept(ctx context.Context, follow *activitypub.Follow, inbox string) error {
	return d.reply(ctx, "Accept", follow, inbox)
}

// SendReject rejects follow by replying to inbox.
func (d *Deliverer) SendReject(ctx context.Context, follow *activitypub.Follow, inbox string) error {
	return d.reply(ctx, "Reject", follow, inbox)
}

func (d *Deliverer) reply(ctx context.Context, typ string, follow *activitypub.Follow, inbox string) error {
	activity := &activitypub.Activity{
		Context: activitypub.ActivityStreams,
		ID:      d.identity.Acct().Activity(uuid.New().String()),
		Type:    typ,
		Actor:   d.identity.ID(),
		To:      []string{follow.ActorID()},
		Object:  follow.Raw(),
	}
	resp, err := d.SendToInbox(ctx, inbox, activity)
	if err != nil {
		return fmt.Errorf("%s %s: %w", typ, follow.ActorID(), err)
	}
	if !resp.OK() {
		return fmt.Errorf("%s %s: %s returned %d", typ, follow.ActorID(), inbox, resp.StatusCode)
	}
	return nil
}

func (d *Deliverer) record(ctx context.Context, inbox string, activity *activitypub.Activity, resp *activitypub.Response, err error) {
	entry := &models.ActivityLogEntry{
		Direction:  models.Outbound,
		Type:       activity.Type,
		Actor:      activity.Actor,
		Target:     inbox,
		ActivityID: activity.ID,
	}
	if resp != nil {
		entry.Status = resp.StatusCode
	}
	if err != nil {
		entry.Error = err.Error()
	}
	d.logger.Debug("send", "type", activity.Type, "inbox", inbox, "status", entry.Status, "error", err)
	if err := d.log.Append(ctx, entry); err != nil {
		d.logger.Warn("activity log", "error", err)
	}
}
