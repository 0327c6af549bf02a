// Package realtime carries insert notifications from the database to
// interested readers and turns them into query-cache invalidations.
package realtime

import (
	"encoding/json"
	"time"
)

// EventInsert is the only event type emitted and observed.
const EventInsert = "INSERT"

// Event describes one change on a table.
type Event struct {
	Type            string            `json:"type"`
	Table           string            `json:"table"`
	Columns         map[string]string `json:"columns"`
	Record          json.RawMessage   `json:"record"`
	CommitTimestamp time.Time         `json:"commit_timestamp"`
}

// Scope selects the events a subscription receives: every insert on Table,
// or only those whose Column equals Value.
type Scope struct {
	Table  string
	Column string
	Value  string
	// Label distinguishes scopes that share a filter, e.g. the section of a
	// post subscription that is matched after the column filter.
	Label string
}

// Name renders a stable channel name, e.g. "posts:Soweto:events".
func (s Scope) Name() string {
	if s.Table == "comments" && s.Column == "post_id" {
		return "comments-" + s.Value
	}
	name := s.Table
	if s.Column != "" {
		name += ":" + s.Value
	}
	if s.Label != "" {
		name += ":" + s.Label
	}
	return name
}

// Matches reports whether ev falls inside the scope.
func (s Scope) Matches(ev Event) bool {
	if ev.Type != EventInsert || ev.Table != s.Table {
		return false
	}
	if s.Column == "" {
		return true
	}
	return ev.Columns[s.Column] == s.Value
}

// Handler receives matching events. It runs on the feed's delivery goroutine;
// it must not block for long or unsubscribe its own subscription.
type Handler func(Event)
