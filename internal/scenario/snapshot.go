// Package scenario holds the loaded timetable as an immutable snapshot and
// hands it out to any number of concurrent readers.
package scenario

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"crisisdrill/internal/domain"
)

// Snapshot is one internally consistent version of the full scenario: every
// collection sorted ascending by scheduled time, plus the raw-row metadata
// index and the role set derived from message destinations. A Snapshot is
// never mutated after construction.
type Snapshot struct {
	Tweets     []domain.Tweet
	Messages   []domain.Message
	Countdowns []domain.CountdownWindow
	Rows       []domain.RawRow
	Meta       map[string]domain.RowMeta
	Roles      []string
}

// NewSnapshot sorts the collections, indexes the message annotations and
// derives the distinct role set.
func NewSnapshot(tweets []domain.Tweet, messages []domain.Message, countdowns []domain.CountdownWindow, rows []domain.RawRow) *Snapshot {
	s := &Snapshot{
		Tweets:     tweets,
		Messages:   messages,
		Countdowns: countdowns,
		Rows:       rows,
		Meta:       make(map[string]domain.RowMeta),
	}

	sort.SliceStable(s.Tweets, func(i, j int) bool { return s.Tweets[i].At.Before(s.Tweets[j].At) })
	sort.SliceStable(s.Messages, func(i, j int) bool { return s.Messages[i].At.Before(s.Messages[j].At) })
	sort.SliceStable(s.Countdowns, func(i, j int) bool { return s.Countdowns[i].Start.Before(s.Countdowns[j].Start) })
	sort.SliceStable(s.Rows, func(i, j int) bool { return s.Rows[i].At.Before(s.Rows[j].At) })

	for _, r := range s.Rows {
		if r.Type == "message" && r.ID != "" {
			s.Meta[r.ID] = domain.RowMeta{ExpectedReaction: r.ExpectedReaction, Comment: r.Comment}
		}
	}

	var roles []string
	for _, m := range s.Messages {
		for _, d := range m.Destinations {
			if !domain.IsBroadcast(d) {
				roles = append(roles, d)
			}
		}
	}
	s.Roles = lo.Uniq(roles)
	sort.Strings(s.Roles)

	return s
}

// Empty returns a snapshot with no events, used until the first load.
func Empty() *Snapshot {
	return NewSnapshot(nil, nil, nil, nil)
}

// WithTweets returns a copy of the snapshot with only the tweet collection
// replaced. Messages, countdowns and row metadata carry over untouched.
func (s *Snapshot) WithTweets(tweets []domain.Tweet) *Snapshot {
	c := &Snapshot{
		Tweets:     tweets,
		Messages:   s.Messages,
		Countdowns: s.Countdowns,
		Rows:       s.Rows,
		Meta:       s.Meta,
		Roles:      s.Roles,
	}
	sort.SliceStable(c.Tweets, func(i, j int) bool { return c.Tweets[i].At.Before(c.Tweets[j].At) })
	return c
}

// ActiveCountdown returns the end time of the countdown window covering now,
// if any. The start bound is inclusive, the end bound exclusive. When windows
// overlap the first match in start order wins.
func (s *Snapshot) ActiveCountdown(now time.Time) (time.Time, bool) {
	for _, w := range s.Countdowns {
		if w.Contains(now) {
			return w.End, true
		}
	}
	return time.Time{}, false
}

// UpcomingMessages returns up to limit not-yet-due messages in scheduled
// order.
func (s *Snapshot) UpcomingMessages(now time.Time, limit int) []domain.Message {
	future := lo.Filter(s.Messages, func(m domain.Message, _ int) bool {
		return !m.At.Before(now)
	})
	if len(future) > limit {
		future = future[:limit]
	}
	return future
}
