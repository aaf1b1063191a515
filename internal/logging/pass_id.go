package logging

import "github.com/google/uuid"

// NewPassID returns a fresh identifier for one ingestion pass or reload.
func NewPassID() string {
	return uuid.NewString()
}
