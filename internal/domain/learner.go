package domain

import (
	"time"
)

// Learner represents an anonymous learner known to the platform.
type Learner struct {
	Identity   string    `json:"identity"`
	Username   string    `json:"username"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
