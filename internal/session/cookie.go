package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

// Cookies signs session ids so a client cannot pick another session's id.
type Cookies struct {
	name   string
	secret []byte
	secure bool
	ttl    time.Duration
}

func NewCookies(name, secret string, secure bool, ttl time.Duration) *Cookies {
	return &Cookies{name: name, secret: []byte(secret), secure: secure, ttl: ttl}
}

func (c *Cookies) Sign(id string) string {
	return id + "." + c.mac(id)
}

// Verify returns the session id carried by a signed value.
func (c *Cookies) Verify(value string) (string, bool) {
	idx := strings.LastIndexByte(value, '.')
	if idx <= 0 {
		return "", false
	}

	id, sig := value[:idx], value[idx+1:]
	if !hmac.Equal([]byte(sig), []byte(c.mac(id))) {
		return "", false
	}
	return id, true
}

func (c *Cookies) mac(id string) string {
	h := hmac.New(sha256.New, c.secret)
	h.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func (c *Cookies) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return "", false
	}
	return c.Verify(cookie.Value)
}

func (c *Cookies) Write(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    c.Sign(id),
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
