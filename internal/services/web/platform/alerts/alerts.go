// Package alerts renders one-time alert messages carried in a cookie.
//
// A producer stores a list of messages in the alert cookie. On the next page
// load the Presenter reads the cookie, renders each message as a heading in
// the page's alert container, and deletes the cookie so the same alerts are
// shown at most once. A missing cookie is the steady state and does nothing.
package alerts

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// CookieName is the cookie the alert producer writes.
	CookieName = "exc"
	// ContainerID is the element id of the page's alert container.
	ContainerID = "alerts"
	// HeadingTag is the element each alert is rendered as.
	HeadingTag = "h1"
)

const tracerName = "github.com/louisbranch/roomalerts/internal/services/web/platform/alerts"

// Container is the render target for alert headings.
type Container interface {
	// AppendHeading appends a heading whose visible text is text. The text is
	// never interpreted as markup.
	AppendHeading(text string)
	// Clear removes every child of the container.
	Clear()
}

// CookieStore is an origin-scoped cookie jar addressable by name.
type CookieStore interface {
	Get(ctx context.Context, name string) (value string, ok bool, err error)
	Delete(ctx context.Context, name string) error
}

// Outcome classifies one ShowAlerts run.
type Outcome string

const (
	// OutcomeAbsent means no alert cookie was present.
	OutcomeAbsent Outcome = "absent"
	// OutcomeMalformed means the payload failed to decode and was deleted.
	OutcomeMalformed Outcome = "malformed"
	// OutcomeRendered means the payload decoded and every message was rendered.
	OutcomeRendered Outcome = "rendered"
	// OutcomeUnavailable means the cookie store could not be read.
	OutcomeUnavailable Outcome = "unavailable"
)

// Result reports what ShowAlerts did.
type Result struct {
	Outcome  Outcome
	Rendered int
	// Deleted reports whether the cookie was removed from the store.
	Deleted bool
}

// Presenter reads the alert cookie and renders its messages into a container.
type Presenter struct {
	container  Container
	store      CookieStore
	cookieName string
	logger     *zap.Logger
	metrics    *Metrics
	tracer     trace.Tracer
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithCookieName overrides the alert cookie name.
func WithCookieName(name string) Option {
	return func(p *Presenter) {
		if name = strings.TrimSpace(name); name != "" {
			p.cookieName = name
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Presenter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records outcomes into m.
func WithMetrics(m *Metrics) Option {
	return func(p *Presenter) {
		p.metrics = m
	}
}

// WithTracer sets the tracer used for the show span.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Presenter) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// NewPresenter binds a presenter to its render target and cookie store.
func NewPresenter(container Container, store CookieStore, opts ...Option) (*Presenter, error) {
	if container == nil {
		return nil, errors.New("alert container is required")
	}
	if store == nil {
		return nil, errors.New("cookie store is required")
	}
	p := &Presenter{
		container:  container,
		store:      store,
		cookieName: CookieName,
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// CreateAlert appends message to the container as a heading.
func (p *Presenter) CreateAlert(message string) {
	p.container.AppendHeading(message)
}

// ClearAlerts empties the container.
func (p *Presenter) ClearAlerts() {
	p.container.Clear()
}

// ShowAlerts renders the alerts stored in the cookie and deletes it.
//
// It never returns an error: a malformed payload is logged and deleted, and a
// missing cookie is a silent no-op.
func (p *Presenter) ShowAlerts(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := p.tracer.Start(ctx, "alerts.show", trace.WithAttributes(
		attribute.String("alerts.cookie", p.cookieName),
	))
	defer span.End()

	result := p.show(ctx)

	span.SetAttributes(
		attribute.String("alerts.outcome", string(result.Outcome)),
		attribute.Int("alerts.count", result.Rendered),
	)
	if result.Outcome == OutcomeMalformed || result.Outcome == OutcomeUnavailable {
		span.SetStatus(codes.Error, string(result.Outcome))
	}
	p.metrics.observe(result)
	return result
}

func (p *Presenter) show(ctx context.Context) Result {
	p.logger.Debug("showing alerts", zap.String("cookie", p.cookieName))

	raw, ok, err := p.store.Get(ctx, p.cookieName)
	if err != nil {
		p.logger.Warn("read alert cookie", zap.String("cookie", p.cookieName), zap.Error(err))
		return Result{Outcome: OutcomeUnavailable}
	}
	if !ok {
		return Result{Outcome: OutcomeAbsent}
	}

	messages, err := Decode(raw)
	if err != nil {
		p.logger.Error("failed to parse alert", zap.String("cookie", p.cookieName), zap.Error(err))
		return Result{Outcome: OutcomeMalformed, Deleted: p.delete(ctx)}
	}

	for _, message := range messages {
		p.CreateAlert(message)
	}
	return Result{Outcome: OutcomeRendered, Rendered: len(messages), Deleted: p.delete(ctx)}
}

func (p *Presenter) delete(ctx context.Context) bool {
	if err := p.store.Delete(ctx, p.cookieName); err != nil {
		p.logger.Warn("delete alert cookie", zap.String("cookie", p.cookieName), zap.Error(err))
		return false
	}
	return true
}
