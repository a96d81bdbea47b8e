package models

import "time"

// SessionMeta tracks one browsing session
type SessionMeta struct {
	StartTime time.Time `json:"startTime"`
	LastSeen  time.Time `json:"lastSeen"`
	Pages     int       `json:"pages"`
}

// Expired reports whether the session has been idle longer than timeout
func (s SessionMeta) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastSeen) > timeout
}

// Sessions maps a session id to its metadata
type Sessions map[string]SessionMeta

// Prune drops expired sessions and returns how many were removed
func (s Sessions) Prune(now time.Time, timeout time.Duration) int {
	removed := 0
	for id, meta := range s {
		if meta.Expired(now, timeout) {
			delete(s, id)
			removed++
		}
	}
	return removed
}
