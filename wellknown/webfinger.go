package wellknown

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/davecheney/linkpub/activitypub"
	"github.com/davecheney/linkpub/internal/httpx"
	"github.com/davecheney/linkpub/internal/to"
)

// WebfingerShow resolves acct:<username>@<domain> to the local actor.
func WebfingerShow(env *activitypub.Env, w http.ResponseWriter, r *http.Request) error {
	resource := r.URL.Query().Get("resource")
	if resource == "" {
		return httpx.Error(http.StatusBadRequest, errors.New("missing resource parameter"))
	}
	jrd := env.Identity.WebFinger(resource)
	if jrd == nil {
		return httpx.Error(http.StatusNotFound, fmt.Errorf("no such resource: %q", resource))
	}
	allowCORS(w)
	return to.JRD(w, jrd)
}
