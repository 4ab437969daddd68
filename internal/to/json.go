// package to contains functions for writing responses.
package to

import (
	"net/http"

	"github.com/go-json-experiment/json"
)

const (
	// ActivityJSONType is the media type of ActivityPub documents.
	ActivityJSONType = "application/activity+json"
	// JRDType is the media type of WebFinger documents.
	JRDType = "application/jrd+json"
)

// JSON writes the given object to the response body as JSON.
// If obj is a nil slice, an empty JSON array is written.
// If obj is a nil map, an empty JSON object is written.
// If obj is a nil pointer, a null is written.
func JSON(w http.ResponseWriter, obj any) error {
	return writeJSON(w, "application/json; charset=utf-8", obj)
}

// ActivityJSON writes obj as an ActivityPub document.
func ActivityJSON(w http.ResponseWriter, obj any) error {
	return writeJSON(w, ActivityJSONType+"; charset=utf-8", obj)
}

// JRD writes obj as a JSON Resource Descriptor.
func JRD(w http.ResponseWriter, obj any) error {
	return writeJSON(w, JRDType+"; charset=utf-8", obj)
}

func writeJSON(w http.ResponseWriter, contentType string, obj any) error {
	w.Header().Set("Content-Type", contentType)
	return json.MarshalOptions{}.MarshalFull(json.EncodeOptions{
		Indent: "  ",
	}, w, obj)
}
