package api

import (
	"encoding/json"
	"fmt"

	"github.com/labstack/echo/v4"

	"crisisdrill/internal/stream"
)

// SSE handlers. Each runs one dispatch loop on the request goroutine until
// the client disconnects; a failed write is the disconnect signal and is not
// treated as an application error.

func (s *Server) streamTweets(c echo.Context) error {
	w := sseResponse(c)
	_ = s.dispatcher.StreamTweets(c.Request().Context(), frameWriter(w))
	return nil
}

func (s *Server) streamMessages(c echo.Context) error {
	role := c.QueryParam("role")
	if role == "" {
		role = s.sessionRole(c)
	}
	w := sseResponse(c)
	_ = s.dispatcher.StreamMessages(c.Request().Context(), role, frameWriter(w))
	return nil
}

func (s *Server) streamTimeline(c echo.Context) error {
	w := sseResponse(c)
	_ = s.dispatcher.StreamTimeline(c.Request().Context(), frameWriter(w))
	return nil
}

func sseResponse(c echo.Context) *echo.Response {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(200)
	return w
}

func frameWriter(w *echo.Response) stream.Emitter {
	return func(f stream.Frame) error {
		data, err := json.Marshal(f.Data)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.Event, data); err != nil {
			return err
		}
		w.Flush()
		return nil
	}
}
