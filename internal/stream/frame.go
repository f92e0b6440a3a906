// Package stream implements the per-connection dispatch loop: catch-up on
// connect, then a fixed-cadence scan pushing newly due items exactly once per
// connection.
package stream

import (
	"time"

	"crisisdrill/internal/domain"
)

// SSE event names.
const (
	EventPing              = "ping"
	EventTweet             = "tweet"
	EventMessage           = "message"
	EventTimeline          = "timeline"
	EventCountdownActive   = "countdown-active"
	EventCountdownInactive = "countdown-inactive"
)

// Frame is one tagged unit on the outbound stream. Data marshals to the
// frame's JSON payload.
type Frame struct {
	Event string
	Data  any
}

type TweetPayload struct {
	ID     string `json:"id"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
	At     string `json:"at"`
	AtMS   int64  `json:"at_ms"`
}

type MessagePayload struct {
	ID           string   `json:"id"`
	Sender       string   `json:"sender"`
	Destinations []string `json:"destinations"`
	Text         string   `json:"text"`
	At           string   `json:"at"`
	AtMS         int64    `json:"at_ms"`
}

// TimelinePayload is the facilitator view of a message: the message plus its
// expected-reaction and comment annotations.
type TimelinePayload struct {
	MessagePayload
	ExpectedReaction string `json:"expected_reaction"`
	Comment          string `json:"comment"`
}

type CountdownPayload struct {
	TargetTimeISO string `json:"target_time_iso"`
}

func NewTweetPayload(t domain.Tweet) TweetPayload {
	return TweetPayload{
		ID:     t.ID,
		Sender: t.Sender,
		Text:   t.Text,
		At:     t.At.Format(time.RFC3339),
		AtMS:   t.At.UnixMilli(),
	}
}

func NewMessagePayload(m domain.Message) MessagePayload {
	return MessagePayload{
		ID:           m.ID,
		Sender:       m.Sender,
		Destinations: m.Destinations,
		Text:         m.Text,
		At:           m.At.Format(time.RFC3339),
		AtMS:         m.At.UnixMilli(),
	}
}

func NewTimelinePayload(m domain.Message, meta domain.RowMeta) TimelinePayload {
	return TimelinePayload{
		MessagePayload:   NewMessagePayload(m),
		ExpectedReaction: meta.ExpectedReaction,
		Comment:          meta.Comment,
	}
}
