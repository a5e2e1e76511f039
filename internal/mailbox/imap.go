package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// IMAPDialer opens sessions against an IMAPS server.
type IMAPDialer struct {
	host     string
	port     int
	username string
	password string
	mailbox  string
	logger   *slog.Logger
}

// NewIMAP creates an IMAP dialer for the given server and mailbox.
func NewIMAP(host string, port int, username, password, mailbox string, logger *slog.Logger) *IMAPDialer {
	if mailbox == "" {
		mailbox = "INBOX"
	}
	return &IMAPDialer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		mailbox:  mailbox,
		logger:   logger,
	}
}

// Open dials the server over TLS and logs in. A dial failure is a
// transient network error; a rejected login is returned as *AuthError.
func (d *IMAPDialer) Open(_ context.Context) (Session, error) {
	addr := net.JoinHostPort(d.host, fmt.Sprintf("%d", d.port))
	d.logger.Debug("connecting", "addr", addr, "account", d.username)

	client, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{ServerName: d.host},
	})
	if err != nil {
		return nil, fmt.Errorf("imap connect %s: %w", addr, err)
	}

	if err := client.Login(d.username, d.password).Wait(); err != nil {
		client.Close()
		return nil, &AuthError{Account: d.username, Err: err}
	}

	d.logger.Info("logged in", "account", d.username)
	return &imapSession{
		client:  client,
		mailbox: d.mailbox,
		logger:  d.logger,
	}, nil
}

type imapSession struct {
	client  *imapclient.Client
	mailbox string
	logger  *slog.Logger
}

// Search selects the mailbox and queries for keyword matches. The
// criteria OR an "unseen + keyword" clause with a plain keyword clause
// so messages left half-processed by an interrupted cycle surface
// again.
func (s *imapSession) Search(keyword string) ([]MessageID, error) {
	if _, err := s.client.Select(s.mailbox, nil).Wait(); err != nil {
		return nil, &SelectError{Mailbox: s.mailbox, Err: err}
	}

	match := imap.SearchCriteria{
		Or: [][2]imap.SearchCriteria{{
			{Header: []imap.SearchCriteriaHeaderField{{Key: "Subject", Value: keyword}}},
			{Body: []string{keyword}},
		}},
	}
	unseenMatch := match
	unseenMatch.NotFlag = []imap.Flag{imap.FlagSeen}

	criteria := &imap.SearchCriteria{
		Or: [][2]imap.SearchCriteria{{unseenMatch, match}},
	}

	data, err := s.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}

	uids := data.AllUIDs()
	ids := make([]MessageID, 0, len(uids))
	for _, uid := range uids {
		ids = append(ids, MessageID(uid))
	}
	return ids, nil
}

// Fetch retrieves the full raw message by UID. The body section is
// peeked so fetching alone never sets the Seen flag.
func (s *imapSession) Fetch(id MessageID) ([]byte, error) {
	uidSet := imap.UIDSetNum(imap.UID(id))
	bodySection := &imap.FetchItemBodySection{Peek: true}

	buffers, err := s.client.Fetch(uidSet, &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}).Collect()
	if err != nil {
		return nil, fmt.Errorf("imap fetch uid %d: %w", id, err)
	}
	if len(buffers) == 0 {
		return nil, fmt.Errorf("imap fetch uid %d: no data returned", id)
	}

	raw := buffers[0].FindBodySection(bodySection)
	if len(raw) == 0 {
		return nil, fmt.Errorf("imap fetch uid %d: empty body", id)
	}
	return raw, nil
}

func (s *imapSession) MarkSeen(id MessageID) error {
	uidSet := imap.UIDSetNum(imap.UID(id))
	cmd := s.client.Store(uidSet, &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("imap store uid %d: %w", id, err)
	}
	return nil
}

func (s *imapSession) Close() error {
	if err := s.client.Logout().Wait(); err != nil {
		s.client.Close()
		return fmt.Errorf("imap logout: %w", err)
	}
	return s.client.Close()
}
