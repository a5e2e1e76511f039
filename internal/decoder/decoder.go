// Package decoder parses raw messages: charset-aware header decoding
// and a lazy walk over the textual MIME parts.
package decoder

import (
	"bytes"
	"io"
	"iter"
	"mime"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Part is one textual segment of a message body.
type Part struct {
	MIMEType string
	Text     string
}

// Message is a parsed raw message. The body is kept raw; TextParts
// re-walks it on every call.
type Message struct {
	Subject string
	From    string
	raw     []byte
}

var wordDecoder = &mime.WordDecoder{CharsetReader: charset.Reader}

// DecodeSubject reassembles a possibly multi-encoded RFC 2047 header
// into one string. On any decode failure the raw header is returned
// unchanged rather than dropping the value; empty input yields "".
func DecodeSubject(raw string) string {
	if raw == "" {
		return ""
	}
	decoded, err := wordDecoder.DecodeHeader(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Parse extracts the decoded subject and sender from raw message bytes.
// It never fails: an unparsable header leaves the fields empty and the
// raw body is retained for part walking.
func Parse(raw []byte) *Message {
	m := &Message{raw: raw}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil && mr == nil {
		return m
	}
	m.Subject = DecodeSubject(mr.Header.Get("Subject"))
	m.From = DecodeSubject(mr.Header.Get("From"))
	return m
}

// TextParts walks the MIME part tree depth-first and yields the inline
// text/plain and text/html parts in document order. Attachments are
// never yielded. A part with an unknown charset is yielded with its
// bytes passed through undecoded; a part that cannot be read at all is
// skipped without ending the walk.
func (m *Message) TextParts() iter.Seq[Part] {
	return func(yield func(Part) bool) {
		mr, err := mail.CreateReader(bytes.NewReader(m.raw))
		if err != nil && mr == nil {
			return
		}
		defer mr.Close()

		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				return
			}
			if err != nil && !message.IsUnknownCharset(err) {
				return
			}
			if p == nil {
				return
			}

			h, ok := p.Header.(*mail.InlineHeader)
			if !ok {
				continue
			}
			mimeType, _, err := h.ContentType()
			if err != nil {
				continue
			}
			if mimeType != "text/plain" && mimeType != "text/html" {
				continue
			}

			body, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			if !yield(Part{MIMEType: mimeType, Text: string(body)}) {
				return
			}
		}
	}
}
