package activitypub

import (
	"errors"
	"net/http"

	"github.com/davecheney/linkpub/internal/activitypub"
	"github.com/davecheney/linkpub/internal/httpx"
	"github.com/davecheney/linkpub/internal/links"
	"github.com/davecheney/linkpub/internal/to"
	"github.com/go-chi/chi/v5"
)

// ActorShow returns the local actor's profile. Only ActivityPub media types
// are served.
func ActorShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	if err := requireLocalActor(env, r); err != nil {
		return err
	}
	if !httpx.AcceptsActivityJSON(r) {
		return httpx.Error(http.StatusNotAcceptable, errors.New("actor is only available as application/activity+json"))
	}
	return to.ActivityJSON(w, env.Identity.Actor())
}

// NoteShow returns the Note for a single link.
func NoteShow(env *Env, w http.ResponseWriter, r *http.Request) error {
	link, err := env.Links.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, links.ErrNotFound) {
			return httpx.Error(http.StatusNotFound, err)
		}
		return err
	}
	note := env.Composer.LinkToNote(link)
	note.Context = activitypub.ActivityStreams
	return to.ActivityJSON(w, note)
}
