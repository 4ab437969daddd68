package wellknown

import (
	"io"
	"net/http"

	"github.com/davecheney/linkpub/activitypub"
)

// HostMetaIndex returns the XRD document pointing at the webfinger endpoint.
func HostMetaIndex(env *activitypub.Env, w http.ResponseWriter, r *http.Request) error {
	allowCORS(w)
	w.Header().Set("Content-Type", "application/xrd+xml; charset=utf-8")
	_, err := io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<XRD xmlns="http://docs.oasis-open.org/ns/xri/xrd-1.0">
  <Link rel="lrdd" type="application/jrd+json" template="https://`+env.Config.Domain+`/.well-known/webfinger?resource={uri}"/>
</XRD>
`)
	return err
}
