package stream

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"crisisdrill/internal/metrics"
	"crisisdrill/internal/scenario"
)

// Emitter writes one frame to the peer. A returned error means the transport
// is gone and the loop must stop.
type Emitter func(Frame) error

// Dispatcher runs one delivery loop per open connection against the shared
// store. Interval and Now are settable for tests; zero values mean a one
// second cadence and the wall clock.
type Dispatcher struct {
	Store    *scenario.Store
	Interval time.Duration
	Now      func() time.Time
	Log      *slog.Logger
}

func NewDispatcher(store *scenario.Store, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		Store:    store,
		Interval: time.Second,
		Now:      time.Now,
		Log:      log,
	}
}

// cursor is the connection-local delivery state: ids already pushed down this
// connection plus the last countdown key emitted. Never shared.
type cursor struct {
	sent          map[string]struct{}
	lastCountdown string
}

func newCursor() *cursor {
	return &cursor{sent: make(map[string]struct{})}
}

func (c *cursor) delivered(id string) bool {
	_, ok := c.sent[id]
	return ok
}

// scanFunc collects the newly due items of one stream kind into a batch
// frame, marking them delivered on the cursor.
type scanFunc func(snap *scenario.Snapshot, cur *cursor, now time.Time) (Frame, bool)

// StreamTweets pushes due tweets plus countdown state transitions.
func (d *Dispatcher) StreamTweets(ctx context.Context, emit Emitter) error {
	return d.run(ctx, "tweets", emit, true, dueTweets)
}

// StreamMessages pushes due messages visible to role, plus countdown state
// transitions.
func (d *Dispatcher) StreamMessages(ctx context.Context, role string, emit Emitter) error {
	return d.run(ctx, "messages", emit, true, func(snap *scenario.Snapshot, cur *cursor, now time.Time) (Frame, bool) {
		return dueMessages(snap, cur, role, now)
	})
}

// StreamTimeline pushes every due message with its facilitator annotations.
// No role filter, no countdown frames.
func (d *Dispatcher) StreamTimeline(ctx context.Context, emit Emitter) error {
	return d.run(ctx, "timeline", emit, false, dueTimeline)
}

func (d *Dispatcher) run(ctx context.Context, kind string, emit Emitter, withCountdown bool, scan scanFunc) error {
	log := d.Log.With("stream", kind, "conn", uuid.NewString())
	metrics.OpenStreams.WithLabelValues(kind).Inc()
	defer metrics.OpenStreams.WithLabelValues(kind).Dec()
	log.Info("stream opened")

	cur := newCursor()
	send := func(f Frame) error {
		if err := emit(f); err != nil {
			return err
		}
		metrics.FramesSent.WithLabelValues(kind, f.Event).Inc()
		return nil
	}

	step := func() error {
		now := d.now()
		snap := d.Store.Current()
		if withCountdown {
			if f, ok := countdownTransition(snap, cur, now); ok {
				if err := send(f); err != nil {
					return err
				}
			}
		}
		if f, ok := scan(snap, cur, now); ok {
			if err := send(f); err != nil {
				return err
			}
		}
		return nil
	}

	// Catch-up: ping, countdown state, then everything already due in one
	// batch.
	if err := send(Frame{Event: EventPing, Data: map[string]any{}}); err != nil {
		log.Info("stream closed", "reason", "write failed")
		return err
	}
	if err := step(); err != nil {
		log.Info("stream closed", "reason", "write failed")
		return err
	}

	ticker := time.NewTicker(d.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("stream closed")
			return nil
		case <-ticker.C:
			if err := step(); err != nil {
				log.Info("stream closed", "reason", "write failed")
				return err
			}
		}
	}
}

func (d *Dispatcher) interval() time.Duration {
	if d.Interval > 0 {
		return d.Interval
	}
	return time.Second
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// countdownTransition emits the countdown state only when it differs from the
// last value sent on this connection. The empty initial key guarantees one
// frame on connect.
func countdownTransition(snap *scenario.Snapshot, cur *cursor, now time.Time) (Frame, bool) {
	end, active := snap.ActiveCountdown(now)
	key := "none"
	if active {
		key = end.Format(time.RFC3339)
	}
	if key == cur.lastCountdown {
		return Frame{}, false
	}
	cur.lastCountdown = key
	if active {
		return Frame{Event: EventCountdownActive, Data: CountdownPayload{TargetTimeISO: key}}, true
	}
	return Frame{Event: EventCountdownInactive, Data: map[string]any{}}, true
}

func dueTweets(snap *scenario.Snapshot, cur *cursor, now time.Time) (Frame, bool) {
	var batch []TweetPayload
	for _, t := range snap.Tweets {
		if t.At.After(now) || cur.delivered(t.ID) {
			continue
		}
		batch = append(batch, NewTweetPayload(t))
		cur.sent[t.ID] = struct{}{}
	}
	return Frame{Event: EventTweet, Data: batch}, len(batch) > 0
}

func dueMessages(snap *scenario.Snapshot, cur *cursor, role string, now time.Time) (Frame, bool) {
	var batch []MessagePayload
	for _, m := range snap.Messages {
		if m.At.After(now) || cur.delivered(m.ID) || !Visible(m.Destinations, role) {
			continue
		}
		batch = append(batch, NewMessagePayload(m))
		cur.sent[m.ID] = struct{}{}
	}
	return Frame{Event: EventMessage, Data: batch}, len(batch) > 0
}

func dueTimeline(snap *scenario.Snapshot, cur *cursor, now time.Time) (Frame, bool) {
	var batch []TimelinePayload
	for _, m := range snap.Messages {
		if m.At.After(now) || cur.delivered(m.ID) {
			continue
		}
		batch = append(batch, NewTimelinePayload(m, snap.Meta[m.ID]))
		cur.sent[m.ID] = struct{}{}
	}
	return Frame{Event: EventTimeline, Data: batch}, len(batch) > 0
}
