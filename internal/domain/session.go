package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is one editor's working copy of a unit record.
type Session struct {
	ID        uuid.UUID  `json:"id"`
	Record    UnitRecord `json:"record"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ExpiredAt reports whether the session has been idle longer than ttl.
// A non-positive ttl never expires.
func (s *Session) ExpiredAt(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}
