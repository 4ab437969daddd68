package httpx

import (
	"mime"
	"net/http"
	"strings"
)

// activityTypes are the media types an ActivityPub document may be
// requested as.
var activityTypes = []string{
	"application/activity+json",
	"application/ld+json",
	"application/json",
}

// AcceptsActivityJSON reports whether the Accept header of the request
// names one of the ActivityPub media types.
func AcceptsActivityJSON(req *http.Request) bool {
	for _, accept := range req.Header.Values("Accept") {
		for _, part := range strings.Split(accept, ",") {
			typ, _, err := mime.ParseMediaType(strings.TrimSpace(part))
			if err != nil {
				continue
			}
			for _, t := range activityTypes {
				if typ == t {
					return true
				}
			}
		}
	}
	return false
}
