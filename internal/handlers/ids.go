package handlers

import "github.com/google/uuid"

// validID reports whether a path identifier parses as a UUID. Malformed
// ids are rejected before they reach storage, where they would fail
// parameter encoding instead of matching a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
