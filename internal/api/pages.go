package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"crisisdrill/internal/domain"
	"crisisdrill/internal/scenario"
	"crisisdrill/internal/stream"
)

// timelineItem is the packed form the page templates consume.
type timelineItem struct {
	stream.TimelinePayload
	Label string
}

func packMessage(snap *scenario.Snapshot, m domain.Message) timelineItem {
	return timelineItem{
		TimelinePayload: stream.NewTimelinePayload(m, snap.Meta[m.ID]),
		Label:           fmt.Sprintf("Message to %v (from %s)", m.Destinations, m.Sender),
	}
}

func (s *Server) pastFuture(snap *scenario.Snapshot, now time.Time) (past, future []domain.Message) {
	past = lo.Filter(snap.Messages, func(m domain.Message, _ int) bool { return m.At.Before(now) })
	future = lo.Filter(snap.Messages, func(m domain.Message, _ int) bool { return !m.At.Before(now) })
	return past, future
}

// countdownPage renders the preempting countdown display when a window is
// active; it returns false otherwise.
func (s *Server) countdownPage(c echo.Context) (bool, error) {
	end, active := s.store.Current().ActiveCountdown(s.now())
	if !active {
		return false, nil
	}
	return true, s.render(c, "countdown.html", map[string]any{
		"TargetISO": end.Format(time.RFC3339),
	})
}

func (s *Server) index(c echo.Context) error {
	if done, err := s.countdownPage(c); done {
		return err
	}

	snap := s.store.Current()
	past, _ := s.pastFuture(snap, s.now())
	return s.render(c, "index.html", map[string]any{
		"TweetCount":   len(snap.Tweets),
		"MessageCount": len(snap.Messages),
		"Past":         s.packTail(snap, past, 5),
	})
}

func (s *Server) socialmedia(c echo.Context) error {
	if done, err := s.countdownPage(c); done {
		return err
	}
	return s.render(c, "socialmedia.html", nil)
}

func (s *Server) inbox(c echo.Context) error {
	if done, err := s.countdownPage(c); done {
		return err
	}

	snap := s.store.Current()
	if c.Request().Method == http.MethodPost {
		role := c.FormValue("role")
		if !lo.Contains(snap.Roles, role) {
			return s.render(c, "inbox.html", map[string]any{
				"Roles": snap.Roles,
				"Error": "unknown role",
			})
		}
		s.setSessionRole(c, role)
		return c.Redirect(http.StatusSeeOther, "/inbox")
	}

	return s.render(c, "inbox.html", map[string]any{
		"Roles":        snap.Roles,
		"SelectedRole": s.sessionRole(c),
	})
}

func (s *Server) inboxChange(c echo.Context) error {
	s.setSessionRole(c, "")
	return c.Redirect(http.StatusSeeOther, "/inbox")
}

func (s *Server) facilitator(c echo.Context) error {
	if ok, err := s.gate(c, gateFacilitator, s.cfg.Auth.FacilitatorPassword, "/facilitator"); !ok {
		return err
	}

	snap := s.store.Current()
	past, future := s.pastFuture(snap, s.now())
	data := map[string]any{
		"TweetCount":   len(snap.Tweets),
		"MessageCount": len(snap.Messages),
		"Past":         s.packTail(snap, past, 5),
	}
	if len(future) > 0 {
		data["Next1"] = packMessage(snap, future[0])
	}
	if len(future) > 1 {
		data["Next2"] = packMessage(snap, future[1])
	}
	return s.render(c, "facilitator.html", data)
}

func (s *Server) observer(c echo.Context) error {
	if ok, err := s.gate(c, gateObserver, s.cfg.Auth.ObserverPassword, "/observer"); !ok {
		return err
	}

	snap := s.store.Current()
	past, future := s.pastFuture(snap, s.now())
	data := map[string]any{
		"Past": s.packTail(snap, past, 3),
	}
	if len(future) > 0 {
		data["Next1"] = packMessage(snap, future[0])
	}
	if len(future) > 1 {
		data["Next2"] = packMessage(snap, future[1])
	}
	return s.render(c, "observer.html", data)
}

func (s *Server) admin(c echo.Context) error {
	if ok, err := s.gate(c, gateAdmin, s.cfg.Auth.AdminPassword, "/admin"); !ok {
		return err
	}

	snap := s.store.Current()
	past, future := s.pastFuture(snap, s.now())
	data := map[string]any{
		"TweetCount":   len(snap.Tweets),
		"MessageCount": len(snap.Messages),
		"Past":         s.packTail(snap, past, 5),
		"Msg":          c.QueryParam("msg"),
	}
	if len(future) > 0 {
		data["Next1"] = packMessage(snap, future[0])
	}
	return s.render(c, "admin.html", data)
}

func (s *Server) resetConfirm(c echo.Context) error {
	return s.render(c, "reset.html", nil)
}

func (s *Server) reset(c echo.Context) error {
	if c.FormValue("action") == "yes" {
		s.clearSession(c)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// gate checks the signed cookie for an area and falls back to the password
// form, accepting a posted password. Returns ok=true when the caller may
// render the protected page.
func (s *Server) gate(c echo.Context, name, password, action string) (bool, error) {
	if s.hasGate(c, name) {
		return true, nil
	}
	if c.Request().Method == http.MethodPost {
		if c.FormValue("password") == password && password != "" {
			s.setGate(c, name)
			return false, c.Redirect(http.StatusSeeOther, action)
		}
		return false, s.render(c, "login.html", map[string]any{
			"Action":  action,
			"Error":   "wrong password",
			"Prefill": "",
		})
	}
	data := map[string]any{"Action": action, "Prefill": ""}
	if s.cfg.Auth.Demo {
		data["Prefill"] = password
	}
	return false, s.render(c, "login.html", data)
}

func (s *Server) packTail(snap *scenario.Snapshot, msgs []domain.Message, n int) []timelineItem {
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return lo.Map(msgs, func(m domain.Message, _ int) timelineItem {
		return packMessage(snap, m)
	})
}
