// Package wellknown serves the discovery documents under /.well-known/ and
// /nodeinfo/ that let remote servers find the local actor.
package wellknown

import "net/http"

// allowCORS permits browser based clients to read discovery documents.
func allowCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
}
