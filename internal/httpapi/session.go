package httpapi

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

var sessionNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("dining-concierge"))

// deriveSessionID gives callers without a session id a stable one built
// from the user agent and client address.
func deriveSessionID(r *http.Request) string {
	seed := r.UserAgent() + "|" + clientIP(r)
	return "user-" + uuid.NewSHA1(sessionNamespace, []byte(seed)).String()
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
