package mailbox

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	pop3client "github.com/knadh/go-pop3"
)

// POP3Dialer opens sessions against a POP3S server. POP3 has no
// server-side search and no message flags, so this mode is degraded:
// Search lists every message and leaves keyword filtering to the
// dispatcher, and MarkSeen is a no-op.
type POP3Dialer struct {
	host     string
	port     int
	username string
	password string
	logger   *slog.Logger
}

// NewPOP3 creates a POP3 dialer.
func NewPOP3(host string, port int, username, password string, logger *slog.Logger) *POP3Dialer {
	return &POP3Dialer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		logger:   logger,
	}
}

func (d *POP3Dialer) Open(_ context.Context) (Session, error) {
	addr := net.JoinHostPort(d.host, fmt.Sprintf("%d", d.port))
	d.logger.Debug("connecting", "addr", addr, "account", d.username)

	client := pop3client.New(pop3client.Opt{
		Host:       d.host,
		Port:       d.port,
		TLSEnabled: true,
	})
	conn, err := client.NewConn()
	if err != nil {
		return nil, fmt.Errorf("pop3 connect %s: %w", addr, err)
	}

	if err := conn.Auth(d.username, d.password); err != nil {
		_ = conn.Quit()
		return nil, &AuthError{Account: d.username, Err: err}
	}

	d.logger.Info("logged in", "account", d.username)
	return &pop3Session{conn: conn, logger: d.logger}, nil
}

type pop3Session struct {
	conn   *pop3client.Conn
	logger *slog.Logger
}

func (s *pop3Session) Search(_ string) ([]MessageID, error) {
	msgs, err := s.conn.List(0)
	if err != nil {
		return nil, fmt.Errorf("pop3 list: %w", err)
	}

	ids := make([]MessageID, 0, len(msgs))
	for _, msg := range msgs {
		ids = append(ids, MessageID(msg.ID))
	}
	s.logger.Debug("listed messages, keyword matching happens client-side", "count", len(ids))
	return ids, nil
}

func (s *pop3Session) Fetch(id MessageID) ([]byte, error) {
	buf, err := s.conn.RetrRaw(int(id))
	if err != nil {
		return nil, fmt.Errorf("pop3 retrieve %d: %w", id, err)
	}
	return buf.Bytes(), nil
}

func (s *pop3Session) MarkSeen(id MessageID) error {
	s.logger.Debug("pop3 has no seen flag, skipping mark-read", "id", id)
	return nil
}

func (s *pop3Session) Close() error {
	if err := s.conn.Quit(); err != nil {
		return fmt.Errorf("pop3 quit: %w", err)
	}
	return nil
}
