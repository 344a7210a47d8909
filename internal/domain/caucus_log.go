package domain

import "time"

type LogKind string

const (
	LogKindCaucus LogKind = "caucus"
	LogKindReply  LogKind = "reply"
)

type CaucusType string

const (
	CaucusModerated   CaucusType = "moderated"
	CaucusUnmoderated CaucusType = "unmoderated"
)

const UnmoderatedCaucusTopic = "Unmoderated Caucus"

// CaucusLogEntry is immutable once appended. Caucus records carry topic,
// duration and type; reply records carry the country granted the reply.
type CaucusLogEntry struct {
	ID         string     `json:"id"`
	SessionID  string     `json:"session_id"`
	Kind       LogKind    `json:"kind"`
	Topic      string     `json:"topic,omitempty"`
	Duration   int        `json:"duration,omitempty"`
	CaucusType CaucusType `json:"caucus_type,omitempty"`
	Country    string     `json:"country,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
