// Package alertcookie exposes one HTTP request's cookies as an alert cookie store.
package alertcookie

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/louisbranch/roomalerts/internal/services/web/platform/alerts"
	"github.com/louisbranch/roomalerts/internal/services/web/platform/requestmeta"
)

// Options controls the attributes of expiring cookies.
type Options struct {
	Policy requestmeta.SchemePolicy
	// Path defaults to "/".
	Path string
	// Domain is left unset when empty.
	Domain string
}

// Store reads cookies from a request and expires them on the response.
type Store struct {
	w       http.ResponseWriter
	r       *http.Request
	opts    Options
	deleted []string
}

var _ alerts.CookieStore = (*Store)(nil)

// New binds a store to one request/response pair.
func New(w http.ResponseWriter, r *http.Request, opts Options) *Store {
	if strings.TrimSpace(opts.Path) == "" {
		opts.Path = "/"
	}
	return &Store{w: w, r: r, opts: opts}
}

// Get returns the raw value of the first cookie named name.
//
// The Cookie header is scanned directly because net/http drops values holding
// '"' or '\', and the alert payload contains both.
func (s *Store) Get(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if s.r == nil || name == "" || slices.Contains(s.deleted, name) {
		return "", false, nil
	}
	for _, line := range s.r.Header.Values("Cookie") {
		if value, ok := lookup(line, name); ok {
			return value, true, nil
		}
	}
	return "", false, nil
}

// Delete expires the cookie named name. Repeated calls write one header.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.w == nil || name == "" || slices.Contains(s.deleted, name) {
		return nil
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     s.opts.Path,
		Domain:   strings.TrimSpace(s.opts.Domain),
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPSWithPolicy(s.r, s.opts.Policy),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	s.deleted = append(s.deleted, name)
	return nil
}

func lookup(line, name string) (string, bool) {
	for part := range strings.SplitSeq(line, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found || strings.TrimSpace(key) != name {
			continue
		}
		return strings.TrimSpace(value), true
	}
	return "", false
}
