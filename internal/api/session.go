package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// Gate names double as cookie names. Sessions are HMAC-signed value cookies;
// there is no server-side session state.
const (
	gateAdmin       = "admin"
	gateFacilitator = "facilitator"
	gateObserver    = "observer"
	roleCookie      = "inbox_role"
)

func (s *Server) sign(v string) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.Auth.CookieSecret))
	mac.Write([]byte(v))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Server) setGate(c echo.Context, gate string) {
	c.SetCookie(&http.Cookie{
		Name:     "gate_" + gate,
		Value:    s.sign("gate:" + gate),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) hasGate(c echo.Context, gate string) bool {
	ck, err := c.Cookie("gate_" + gate)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(ck.Value), []byte(s.sign("gate:"+gate)))
}

func (s *Server) setSessionRole(c echo.Context, role string) {
	// Role names may contain spaces or slashes, so escape them for the
	// cookie value.
	c.SetCookie(&http.Cookie{
		Name:     roleCookie,
		Value:    url.QueryEscape(role) + "|" + s.sign("role:"+role),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) sessionRole(c echo.Context) string {
	ck, err := c.Cookie(roleCookie)
	if err != nil {
		return ""
	}
	escaped, sig, ok := strings.Cut(ck.Value, "|")
	if !ok {
		return ""
	}
	role, err := url.QueryUnescape(escaped)
	if err != nil || !hmac.Equal([]byte(sig), []byte(s.sign("role:"+role))) {
		return ""
	}
	return role
}

func (s *Server) clearSession(c echo.Context) {
	for _, name := range []string{"gate_" + gateAdmin, "gate_" + gateFacilitator, "gate_" + gateObserver, roleCookie} {
		c.SetCookie(&http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
	}
}
