// Package monitor runs the polling loop: connect, search, process each
// matching message, disconnect, wait, repeat until cancelled.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ejohansen/mailwatch/internal/config"
	"github.com/ejohansen/mailwatch/internal/dedup"
	"github.com/ejohansen/mailwatch/internal/decoder"
	"github.com/ejohansen/mailwatch/internal/extract"
	"github.com/ejohansen/mailwatch/internal/mailbox"
)

// Outcome classifies how one message was handled.
type Outcome int

const (
	// OutcomeNoMatch means the keyword appeared in neither subject nor
	// body; the message was left untouched.
	OutcomeNoMatch Outcome = iota
	// OutcomeNoLink means the keyword matched but no URL was found; the
	// message was marked read anyway.
	OutcomeNoLink
	// OutcomeLinked means the keyword matched and the first URL was
	// opened; the message was marked read.
	OutcomeLinked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoLink:
		return "no-link"
	case OutcomeLinked:
		return "linked"
	default:
		return "no-match"
	}
}

// Opener launches a URL in the user's browser. Failures are logged by
// the monitor, never retried.
type Opener interface {
	Open(url string) error
}

// OpenFunc adapts a plain function to the Opener interface.
type OpenFunc func(url string) error

func (f OpenFunc) Open(url string) error { return f(url) }

// Monitor polls one mailbox for keyword matches. It is driven by a
// single goroutine; the session and processed set are never shared.
type Monitor struct {
	cfg       *config.Config
	dialer    mailbox.Dialer
	opener    Opener
	logger    *slog.Logger
	processed *dedup.Set
}

// New creates a Monitor. The config must already be validated.
func New(cfg *config.Config, dialer mailbox.Dialer, opener Opener, logger *slog.Logger) *Monitor {
	return &Monitor{
		cfg:       cfg,
		dialer:    dialer,
		opener:    opener,
		logger:    logger,
		processed: dedup.New(),
	}
}

// Run polls until ctx is cancelled. The processed set is reset at the
// start of each run, so a fresh start reconsiders every message.
func (m *Monitor) Run(ctx context.Context) {
	m.processed = dedup.New()

	m.logger.Info("monitor starting",
		"server", m.cfg.Server,
		"account", m.cfg.Account,
		"keyword", m.cfg.Keyword,
		"interval", m.cfg.PollInterval(),
	)

	for {
		if ctx.Err() != nil {
			m.logger.Info("monitor stopped")
			return
		}

		m.cycle(ctx)

		m.logger.Debug("waiting until next poll", "interval", m.cfg.PollInterval())
		timer := time.NewTimer(m.cfg.PollInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			m.logger.Info("monitor stopped")
			return
		case <-timer.C:
		}
	}
}

// cycle is one connect -> search -> process -> disconnect pass. All
// errors inside a cycle are logged and absorbed; the next cycle retries
// from scratch.
func (m *Monitor) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("unexpected error in polling cycle", "panic", r)
		}
	}()

	session, err := m.dialer.Open(ctx)
	if err != nil {
		var authErr *mailbox.AuthError
		if errors.As(err, &authErr) {
			m.logger.Error("login rejected, check account and app password", "error", err)
		} else {
			m.logger.Error("connect failed", "error", err)
		}
		return
	}
	defer func() {
		if err := session.Close(); err != nil {
			m.logger.Warn("close failed", "error", err)
		} else {
			m.logger.Debug("logged out")
		}
	}()

	ids, err := session.Search(m.cfg.Keyword)
	if err != nil {
		m.logger.Error("search failed", "error", err)
		return
	}
	if len(ids) == 0 {
		m.logger.Info("no messages matched search criteria")
		return
	}
	m.logger.Info("search matched messages", "count", len(ids))

	// Newest first.
	for i := len(ids) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return
		}
		id := ids[i]
		if m.processed.Seen(id) {
			continue
		}
		m.processMessage(ctx, session, id)
	}
}

// processMessage fetches, decodes, and dispatches one message. A fetch
// failure leaves the identifier out of the processed set so it is
// retried next cycle; every dispatched message joins the set exactly
// once regardless of outcome.
func (m *Monitor) processMessage(ctx context.Context, session mailbox.Session, id mailbox.MessageID) {
	raw, err := session.Fetch(id)
	if err != nil {
		m.logger.Error("fetch failed", "id", id, "error", err)
		return
	}

	msg := decoder.Parse(raw)
	m.logger.Info("processing message", "id", id, "from", msg.From, "subject", msg.Subject)

	outcome := m.dispatch(ctx, session, id, msg)
	m.processed.Mark(id)
	m.logger.Debug("message dispatched", "id", id, "outcome", outcome)
}

// dispatch scans the message once, resolving the keyword match and the
// first link together, then acts: open the link and/or mark the message
// read when matched, nothing when not.
func (m *Monitor) dispatch(ctx context.Context, session mailbox.Session, id mailbox.MessageID, msg *decoder.Message) Outcome {
	keyword := strings.ToLower(m.cfg.Keyword)
	matched := strings.Contains(strings.ToLower(msg.Subject), keyword)

	var link string
	for part := range msg.TextParts() {
		if ctx.Err() != nil {
			break
		}
		if !matched && strings.Contains(strings.ToLower(part.Text), keyword) {
			matched = true
		}
		if link == "" {
			if url, ok := extract.InText(part.Text); ok {
				link = url
			}
		}
		if matched && link != "" {
			break
		}
	}

	if !matched {
		m.logger.Info("keyword not found, skipping", "id", id)
		return OutcomeNoMatch
	}

	if link != "" {
		m.logger.Info("found link", "id", id, "url", link)
		if err := m.opener.Open(link); err != nil {
			m.logger.Error("open link failed", "id", id, "url", link, "error", err)
		} else {
			m.logger.Info("opened link in browser", "url", link)
		}
		m.markSeen(session, id)
		return OutcomeLinked
	}

	m.logger.Info("keyword matched but no link found", "id", id)
	m.markSeen(session, id)
	return OutcomeNoLink
}

func (m *Monitor) markSeen(session mailbox.Session, id mailbox.MessageID) {
	if err := session.MarkSeen(id); err != nil {
		m.logger.Error("mark read failed", "id", id, "error", err)
		return
	}
	m.logger.Info("marked message read", "id", id)
}
