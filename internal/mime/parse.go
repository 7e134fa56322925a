// Package mime parses RFC 5322 messages with enmime and renders their
// headers and bodies for display with character references decoded.
package mime

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/msgtext/entdecode/internal/entity"
	"github.com/msgtext/entdecode/internal/textutil"
)

// Message is a parsed e-mail message.
type Message struct {
	Subject   string
	Date      time.Time
	From      []Address
	To        []Address
	Cc        []Address
	ReplyTo   []Address
	MessageID string
	BodyText  string
	BodyHTML  string
	Errors    []string // Non-fatal parsing errors
}

// Address is an e-mail address with optional display name.
type Address struct {
	Name   string
	Email  string
	Domain string
}

// Parse parses raw MIME data into a Message.
func Parse(raw []byte) (*Message, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("read envelope: %w", err)
	}

	msg := &Message{
		Subject:   textutil.EnsureUTF8(env.GetHeader("Subject")),
		MessageID: strings.Trim(env.GetHeader("Message-ID"), "<> "),
		BodyText:  env.Text,
		BodyHTML:  env.HTML,
		From:      parseAddressList(env, "From"),
		To:        parseAddressList(env, "To"),
		Cc:        parseAddressList(env, "Cc"),
		ReplyTo:   parseAddressList(env, "Reply-To"),
	}

	if dateStr := env.GetHeader("Date"); dateStr != "" {
		if t, ok := parseDate(dateStr); ok {
			msg.Date = t
		}
	}

	for _, e := range env.Errors {
		msg.Errors = append(msg.Errors, e.Error())
	}
	return msg, nil
}

func parseAddressList(env *enmime.Envelope, header string) []Address {
	list, err := env.AddressList(header)
	if err != nil || list == nil {
		return nil
	}

	addresses := make([]Address, 0, len(list))
	for _, addr := range list {
		if addr.Address == "" {
			continue
		}
		addresses = append(addresses, Address{
			Name:   textutil.EnsureUTF8(addr.Name),
			Email:  strings.ToLower(addr.Address),
			Domain: extractDomain(addr.Address),
		})
	}
	return addresses
}

func extractDomain(email string) string {
	if idx := strings.LastIndex(email, "@"); idx >= 0 {
		return strings.ToLower(email[idx+1:])
	}
	return ""
}

var dateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"02 Jan 2006 15:04:05 -0700",
	time.RFC822Z,
	time.RFC822,
	time.RFC850,
	time.ANSIC,
	time.RFC3339,
}

// parseDate tries the common mail date layouts after stripping a trailing
// parenthesized zone comment such as "(UTC)". The result is in UTC.
func parseDate(s string) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if idx := strings.LastIndex(s, "("); idx > 0 {
		s = strings.TrimSpace(s[:idx])
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// DisplaySubject returns the subject with character references decoded.
// Feed-to-mail gateways often leave them escaped in headers.
func (m *Message) DisplaySubject() string {
	return entity.DecodeOrRaw(m.Subject)
}

// DisplayName returns the decoded display name, or the address if the
// message carried no name.
func (a Address) DisplayName() string {
	if a.Name == "" {
		return a.Email
	}
	return entity.DecodeOrRaw(a.Name)
}

// String formats the address as "Name <email>" with the name decoded.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", entity.DecodeOrRaw(a.Name), a.Email)
}

// GetBodyText returns the best available body text for display. The plain
// text part is preferred; otherwise the HTML part is converted.
func (m *Message) GetBodyText() string {
	if m.BodyText != "" {
		return entity.DecodeOrRaw(m.BodyText)
	}
	if m.BodyHTML != "" {
		return StripHTML(m.BodyHTML)
	}
	return ""
}

// GetFirstFrom returns the first From address, or the zero Address.
func (m *Message) GetFirstFrom() Address {
	if len(m.From) > 0 {
		return m.From[0]
	}
	return Address{}
}
