package activitypub

import (
	"context"
	"net/http"

	"github.com/davecheney/linkpub/internal/algorithms"
	"github.com/davecheney/linkpub/internal/to"
	"github.com/davecheney/linkpub/models"
)

// followerCounter is the subset of the follower store the followers
// collection needs.
type followerCounter interface {
	Count(ctx context.Context) (int, error)
	Page(ctx context.Context, offset, limit int) ([]*models.Follower, error)
}

// FollowersCollection returns the followers collection summary when page
// is nil, otherwise the requested page of follower ids.
func FollowersCollection(ctx context.Context, followers followerCounter, id string, page *int, perPage int) (any, error) {
	total, err := followers.Count(ctx)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return collectionSummary(id, total, perPage), nil
	}
	if *page > lastPage(total, perPage) {
		return collectionPage(id, []any{}, total, *page, perPage), nil
	}
	fs, err := followers.Page(ctx, (*page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	items := algorithms.Map(fs, func(f *models.Follower) any { return f.ID })
	return collectionPage(id, items, total, *page, perPage), nil
}

// FollowersShow returns the followers collection summary, or one page of
// follower ids.
func FollowersShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	if err := requireLocalActor(env, r); err != nil {
		return err
	}
	page, err := parsePage(r)
	if err != nil {
		return err
	}
	coll, err := FollowersCollection(r.Context(), env.Followers, env.Identity.Acct().Followers(), page, env.Config.PageSize)
	if err != nil {
		return err
	}
	return to.ActivityJSON(w, coll)
}

// FollowingShow returns the following collection, which is always empty;
// the local actor does not follow anyone.
func FollowingShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	if err := requireLocalActor(env, r); err != nil {
		return err
	}
	page, err := parsePage(r)
	if err != nil {
		return err
	}
	id := env.Identity.Acct().Following()
	if page == nil {
		return to.ActivityJSON(w, collectionSummary(id, 0, env.Config.PageSize))
	}
	return to.ActivityJSON(w, collectionPage(id, []any{}, 0, *page, env.Config.PageSize))
}

// OutboxShow returns the outbox summary, or one page of Create activities.
func OutboxShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	if err := requireLocalActor(env, r); err != nil {
		return err
	}
	page, err := parsePage(r)
	if err != nil {
		return err
	}
	all, err := env.Links.All(r.Context())
	if err != nil {
		return err
	}
	return to.ActivityJSON(w, env.Composer.Outbox(all, page, env.Config.PageSize))
}

var _ followerCounter = (*models.Followers)(nil)
