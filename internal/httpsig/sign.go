// Package httpsig implements the HTTP Signature scheme as defined in draft-cavage-http-signatures-10.
package httpsig

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// RequestTarget is the pseudo-header used to sign the request target.
	RequestTarget = "(request-target)"

	// DateFormat is the format of the Date header. Date must be in GMT, not UTC.
	DateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"
)

// Sign signs the request using the given keyID and privateKey, setting the
// Date, Digest and Signature headers. The signed headers are always
// (request-target), host and date, followed by digest when body is not nil.
// The value of the Signature header is returned.
func Sign(req *http.Request, keyID string, privateKey *rsa.PrivateKey, body []byte) (string, error) {
	if req.Header.Get("Date") == "" {
		req.Header.Set("Date", time.Now().UTC().Format(DateFormat))
	}
	headersToSign := []string{RequestTarget, "host", "date"}
	if body != nil {
		req.Header.Set("Digest", Digest(body))
		headersToSign = append(headersToSign, "digest")
	}

	input, err := signingString(req, headersToSign)
	if err != nil {
		return "", err
	}
	hashed := sha256.Sum256([]byte(input))
	sig, err := rsa.SignPKCS1v15(rand.Reader, privateKey, crypto.SHA256, hashed[:])
	if err != nil {
		return "", err
	}
	header := fmt.Sprintf(`keyId="%s",algorithm="rsa-sha256",headers="%s",signature="%s"`,
		keyID, strings.Join(headersToSign, " "), base64.StdEncoding.EncodeToString(sig))
	req.Header.Set("Signature", header)
	return header, nil
}

// Digest returns the value of the Digest header for body.
func Digest(body []byte) string {
	sum := sha256.Sum256(body)
	return "SHA-256=" + base64.StdEncoding.EncodeToString(sum[:])
}

// signingString builds the string to be signed from the named headers of req.
func signingString(req *http.Request, headers []string) (string, error) {
	var sb strings.Builder
	for i, header := range headers {
		if i > 0 {
			sb.WriteString("\n")
		}
		name := strings.ToLower(header)
		switch name {
		case RequestTarget:
			sb.WriteString(RequestTarget + ": ")
			sb.WriteString(strings.ToLower(req.Method))
			sb.WriteString(" ")
			sb.WriteString(req.URL.RequestURI())
		case "host":
			host := req.Host
			if host == "" {
				host = req.URL.Host
			}
			if host == "" {
				return "", fmt.Errorf("header %q is missing", name)
			}
			sb.WriteString("host: ")
			sb.WriteString(host)
		default:
			values := req.Header.Values(name)
			if len(values) == 0 {
				return "", fmt.Errorf("header %q is missing", name)
			}
			sb.WriteString(name)
			sb.WriteString(":")
			for j, v := range values {
				if j > 0 {
					sb.WriteString(",")
				}
				sb.WriteString(" ")
				sb.WriteString(strings.TrimSpace(v))
			}
		}
	}
	return sb.String(), nil
}
