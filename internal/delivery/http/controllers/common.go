package controllers

import (
	"net"
	"net/http"
	"net/mail"
	"strings"

	"eventinvites/internal/delivery/http/helpers"
	"eventinvites/internal/delivery/http/middleware"
)

// ownerFromRequest returns the authenticated user ID or writes a 401.
func ownerFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok || ownerID == "" {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	return ownerID, true
}

// clientIP prefers the first X-Forwarded-For hop and falls back to the connection address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
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

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
