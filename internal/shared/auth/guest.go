package auth

import "strings"

// GuestPrefix marks user ids that belong to ephemeral guest sessions.
// Guest-owned data never reaches durable storage.
const GuestPrefix = "guest:"

// GuestID builds the user id for a raw guest session id.
func GuestID(raw string) string {
	return GuestPrefix + raw
}

// IsGuestID reports whether a user id belongs to a guest session.
func IsGuestID(userID string) bool {
	return strings.HasPrefix(userID, GuestPrefix)
}
