package storage

import "time"

// Session represents one contiguous period of focus on a single app.
// Immutable once persisted.
type Session struct {
	ID         string
	Title      string
	AppKey     string
	StartedAt  time.Time
	DurationMs int64
}

// EndedAt returns the instant the session closed.
func (s Session) EndedAt() time.Time {
	return s.StartedAt.Add(time.Duration(s.DurationMs) * time.Millisecond)
}

// Category is a named, colored grouping of apps. Built-in categories ship
// with the schema and cannot be deleted; user-created ones have IsCustom set.
type Category struct {
	ID          string
	Description string
	Color       string
	MemberApps  []string
	IsCustom    bool
}

// Stats holds aggregate statistics about the Glimpse database.
type Stats struct {
	TotalSessions  int64
	TotalTrackedMs int64
	DistinctApps   int64
	OldestSession  time.Time
	NewestSession  time.Time
	TopApps        []AppTime
}

// AppTime pairs an app key with its total tracked time.
type AppTime struct {
	AppKey  string
	TotalMs int64
}
