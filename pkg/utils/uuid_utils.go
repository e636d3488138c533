package utils

import "github.com/google/uuid"

// GenerateUUIDv7 returns a time-ordered UUID. Every entity ID in the
// system comes from here so index insertion stays roughly sequential
// and newest-first listings can sort on the ID itself.
func GenerateUUIDv7() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to v4
		return uuid.New()
	}
	return id
}
