package wellknown

import (
	"errors"
	"net/http"

	"github.com/davecheney/linkpub/activitypub"
	"github.com/davecheney/linkpub/internal/httpx"
	"github.com/davecheney/linkpub/internal/to"
	"github.com/go-chi/chi/v5"
)

const (
	softwareName    = "linkpub"
	softwareVersion = "0.0.0-devel"
	repository      = "https://github.com/davecheney/linkpub"
)

func NodeInfoIndex(env *activitypub.Env, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("cache-control", "max-age=259200, public")
	allowCORS(w)
	return to.JSON(w, map[string]any{
		"links": []any{
			map[string]any{
				"rel":  "http://nodeinfo.diaspora.software/ns/schema/2.0",
				"href": "https://" + env.Config.Domain + "/nodeinfo/2.0",
			},
			map[string]any{
				"rel":  "http://nodeinfo.diaspora.software/ns/schema/2.1",
				"href": "https://" + env.Config.Domain + "/nodeinfo/2.1",
			},
		},
	})
}

func NodeInfoShow(env *activitypub.Env, w http.ResponseWriter, r *http.Request) error {
	software := map[string]any{
		"name":    softwareName,
		"version": softwareVersion,
	}
	version := chi.URLParam(r, "version")
	switch version {
	case "2.0":
		// https://github.com/jhass/nodeinfo/blob/main/schemas/2.0/schema.json
	case "2.1":
		software["repository"] = repository
	default:
		return httpx.Error(http.StatusNotFound, errors.New("unsupported version: "+version))
	}
	usage, err := usage(env, r)
	if err != nil {
		return err
	}
	w.Header().Set("cache-control", "max-age=259200, public")
	allowCORS(w)
	return to.JSON(w, map[string]any{
		"version":           version,
		"software":          software,
		"protocols":         []any{"activitypub"},
		"services":          map[string]any{"inbound": []any{}, "outbound": []any{}},
		"usage":             usage,
		"openRegistrations": false,
		"metadata": map[string]any{
			"nodeName": env.Config.DisplayName,
		},
	})
}

// usage reports the single local user and the number of published links.
func usage(env *activitypub.Env, r *http.Request) (map[string]any, error) {
	all, err := env.Links.All(r.Context())
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"users": map[string]any{
			"total":          1,
			"activeMonth":    1,
			"activeHalfyear": 1,
		},
		"localPosts": len(all),
	}, nil
}
