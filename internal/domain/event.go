package domain

import (
	"strings"
	"time"
)

// Tweet is a scheduled social-media stimulus shown to every participant.
type Tweet struct {
	ID     string
	At     time.Time
	Sender string
	Text   string
}

// Message is a scheduled stimulus addressed to one or more roles.
type Message struct {
	ID           string
	At           time.Time
	Sender       string
	Destinations []string
	Text         string
}

// CountdownWindow is an interval during which a countdown display preempts
// normal content. End is always Start plus Minutes.
type CountdownWindow struct {
	Start   time.Time
	End     time.Time
	Minutes int
}

// Contains reports whether now falls inside the window. The start bound is
// inclusive, the end bound exclusive.
func (w CountdownWindow) Contains(now time.Time) bool {
	return !now.Before(w.Start) && now.Before(w.End)
}

// RawRow keeps the full original field set of a timetable row. It exists for
// facilitator-side display only and plays no part in scheduling.
type RawRow struct {
	ID               string
	Type             string
	Sender           string
	Destination      string
	Stimulus         string
	ExpectedReaction string
	Comment          string
	Deliverable      string
	At               time.Time
}

// RowMeta is the facilitator annotation pair attached to a message id.
type RowMeta struct {
	ExpectedReaction string
	Comment          string
}

// broadcastMarkers are the destination values that address every role. The
// French form appears in real timetables.
var broadcastMarkers = []string{"ALL", "tous"}

// IsBroadcast reports whether a destination entry addresses every role.
func IsBroadcast(dest string) bool {
	for _, m := range broadcastMarkers {
		if strings.EqualFold(strings.TrimSpace(dest), m) {
			return true
		}
	}
	return false
}

// SplitDestinations splits a destination cell into its role entries. Cells
// list one role per line; entries are trimmed and blanks dropped.
func SplitDestinations(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, "\n") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
