package handlers

import (
	"errors"
	"net/http"
	"strings"
)

// errNotOwner is returned by requireOwner when the caller does not own the
// entity it is trying to mutate.
var errNotOwner = errors.New("caller does not own this resource")

// authedHandler receives the resolved caller identity alongside the request.
type authedHandler func(w http.ResponseWriter, r *http.Request, callerID string)

// requireAuth gates a handler behind bearer-token verification, resolving
// the token to the caller's user id.
func requireAuth(sessions SessionManager, next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if sessions == nil {
			respondError(ctx, w, http.StatusInternalServerError, "authentication services unavailable")
			return
		}

		token := bearerToken(r)
		if token == "" {
			respondError(ctx, w, http.StatusUnauthorized, "missing access token")
			return
		}

		callerID, err := sessions.Verify(token)
		if err != nil {
			respondError(ctx, w, http.StatusUnauthorized, "invalid or expired access token")
			return
		}

		next(w, r, callerID)
	}
}

// bearerToken extracts the access token from the Authorization header,
// falling back to the accessToken cookie.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := r.Cookie("accessToken"); err == nil {
		return cookie.Value
	}
	return ""
}

// callerIfAuthenticated resolves the caller identity when a valid token is
// present, returning "" otherwise. Used by public endpoints that record
// per-user state (watch history) opportunistically.
func callerIfAuthenticated(sessions SessionManager, r *http.Request) string {
	if sessions == nil {
		return ""
	}
	token := bearerToken(r)
	if token == "" {
		return ""
	}
	callerID, err := sessions.Verify(token)
	if err != nil {
		return ""
	}
	return callerID
}

// requireOwner is the single ownership predicate applied to every
// owner-gated mutation.
func requireOwner(callerID, ownerID string) error {
	if callerID == "" || callerID != ownerID {
		return errNotOwner
	}
	return nil
}
