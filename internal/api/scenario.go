package api

import (
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"crisisdrill/internal/domain"
	"crisisdrill/internal/ingest"
	"crisisdrill/internal/metrics"
	"crisisdrill/internal/stream"
)

// loadScenario replaces the whole snapshot from an uploaded timetable. On
// any row error the previous snapshot stays in effect and the row-scoped
// cause is surfaced to the operator.
func (s *Server) loadScenario(c echo.Context) error {
	if !s.hasGate(c, gateAdmin) {
		return c.Redirect(http.StatusSeeOther, "/admin")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return s.adminRedirect(c, "select a timetable file (.xlsx or .csv)")
	}

	table, err := readUpload(fh)
	if err != nil {
		metrics.ScenarioLoads.WithLabelValues("error").Inc()
		return s.adminRedirect(c, err.Error())
	}

	snap, err := s.parser.ParseScenario(table)
	if err != nil {
		metrics.ScenarioLoads.WithLabelValues("error").Inc()
		s.log.Warn("scenario load rejected", "err", err)
		return s.adminRedirect(c, err.Error())
	}

	s.store.Replace(snap)
	metrics.ScenarioLoads.WithLabelValues("ok").Inc()
	s.log.Info("scenario loaded",
		"tweets", len(snap.Tweets),
		"messages", len(snap.Messages),
		"countdowns", len(snap.Countdowns),
		"roles", len(snap.Roles))
	return s.adminRedirect(c, "timetable loaded")
}

// loadTweets replaces only the tweet collection from a tweet-only table.
func (s *Server) loadTweets(c echo.Context) error {
	if !s.hasGate(c, gateAdmin) {
		return c.Redirect(http.StatusSeeOther, "/admin")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return s.adminRedirect(c, "select a tweet file (.xlsx or .csv)")
	}

	table, err := readUpload(fh)
	if err != nil {
		return s.adminRedirect(c, err.Error())
	}

	tweets, err := s.parser.ParseTweets(table)
	if err != nil {
		s.log.Warn("tweet seed rejected", "err", err)
		return s.adminRedirect(c, err.Error())
	}

	s.store.ReplaceTweets(tweets)
	s.log.Info("tweet seed loaded", "tweets", len(tweets))
	return s.adminRedirect(c, "tweets loaded")
}

// loadFeed seeds the tweet collection from an RSS/Atom feed URL.
func (s *Server) loadFeed(c echo.Context) error {
	if !s.hasGate(c, gateAdmin) {
		return c.Redirect(http.StatusSeeOther, "/admin")
	}

	feedURL := c.FormValue("url")
	if feedURL == "" {
		return s.adminRedirect(c, "feed url is required")
	}

	tweets, err := s.feed.Fetch(c.Request().Context(), feedURL)
	if err != nil {
		s.log.Warn("feed seed failed", "url", feedURL, "err", err)
		return s.adminRedirect(c, "feed fetch failed: "+err.Error())
	}

	s.store.ReplaceTweets(tweets)
	s.log.Info("feed seed loaded", "url", feedURL, "tweets", len(tweets))
	return s.adminRedirect(c, "feed loaded")
}

// upcoming returns the next not-yet-due messages with their facilitator
// annotations, independent of any stream.
func (s *Server) upcoming(c echo.Context) error {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 {
		limit = 3
	}

	snap := s.store.Current()
	out := lo.Map(snap.UpcomingMessages(s.now(), limit), func(m domain.Message, _ int) stream.TimelinePayload {
		return stream.NewTimelinePayload(m, snap.Meta[m.ID])
	})
	return c.JSON(http.StatusOK, out)
}

// roles returns the role set derived from the loaded timetable.
func (s *Server) roles(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Current().Roles)
}

func (s *Server) adminRedirect(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/admin?msg="+url.QueryEscape(msg))
}

func readUpload(fh *multipart.FileHeader) ([][]string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingest.ReadTable(f, fh.Filename)
}
