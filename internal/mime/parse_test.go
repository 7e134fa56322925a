package mime

import (
	"strings"
	"testing"
	"time"

	"github.com/msgtext/entdecode/internal/testutil"
	testemail "github.com/msgtext/entdecode/internal/testutil/email"
)

// mustParse calls Parse and fails the test on error.
func mustParse(t *testing.T, raw []byte) *Message {
	t.Helper()
	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	return msg
}

func parseEmail(t *testing.T, opts testemail.Options) *Message {
	t.Helper()
	return mustParse(t, testemail.MakeRaw(opts))
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		email  string
		domain string
	}{
		{"user@example.com", "example.com"},
		{"USER@EXAMPLE.COM", "example.com"},
		{"nodomain", ""},
		{"", ""},
	}
	for _, tc := range tests {
		t.Run(tc.email, func(t *testing.T) {
			if got := extractDomain(tc.email); got != tc.domain {
				t.Errorf("extractDomain(%q) = %q, want %q", tc.email, got, tc.domain)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{"RFC1123Z", "Mon, 02 Jan 2006 15:04:05 -0700", time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC), true},
		{"no weekday", "02 Jan 2006 15:04:05 -0700", time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC), true},
		{"parenthesized zone", "Mon, 02 Jan 2006 15:04:05 -0700 (PST)", time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC), true},
		{"double space", "Mon,  2 Dec 2024 11:42:03 +0000 (UTC)", time.Date(2024, 12, 2, 11, 42, 3, 0, time.UTC), true},
		{"RFC3339", "2006-01-02T15:04:05-07:00", time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "not a date", time.Time{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseDate(tc.input)
			if ok != tc.wantOK {
				t.Fatalf("parseDate(%q) ok = %v, want %v", tc.input, ok, tc.wantOK)
			}
			if !got.Equal(tc.want) {
				t.Errorf("parseDate(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParse_MinimalMessage(t *testing.T) {
	msg := parseEmail(t, testemail.Options{
		Body: "Body text",
		Headers: map[string]string{
			"Date":       "Mon, 02 Jan 2006 15:04:05 -0700",
			"Message-ID": "<abc@example.com>",
		},
	})

	if len(msg.From) != 1 || msg.From[0].Email != "sender@example.com" || msg.From[0].Domain != "example.com" {
		t.Errorf("From = %+v", msg.From)
	}
	if len(msg.To) != 1 || msg.To[0].Email != "recipient@example.com" {
		t.Errorf("To = %+v", msg.To)
	}
	if msg.Subject != "Test" {
		t.Errorf("Subject = %q, want Test", msg.Subject)
	}
	if msg.MessageID != "abc@example.com" {
		t.Errorf("MessageID = %q", msg.MessageID)
	}
	if msg.Date.IsZero() {
		t.Error("Date not parsed")
	}
	if msg.BodyText != "Body text" {
		t.Errorf("BodyText = %q, want %q", msg.BodyText, "Body text")
	}
}

func TestParse_EscapedHeaders(t *testing.T) {
	msg := parseEmail(t, testemail.Options{
		From:    `"Ben &amp; Jerry&#39;s" <news@example.com>`,
		Subject: "Caf&eacute; menu &mdash; week 3",
		Body:    "Soup &amp; salad",
	})

	if got := msg.DisplaySubject(); got != "Café menu — week 3" {
		t.Errorf("DisplaySubject() = %q", got)
	}
	from := msg.GetFirstFrom()
	if got := from.DisplayName(); got != "Ben & Jerry's" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := from.String(); got != "Ben & Jerry's <news@example.com>" {
		t.Errorf("String() = %q", got)
	}
	if got := msg.GetBodyText(); got != "Soup & salad" {
		t.Errorf("GetBodyText() = %q", got)
	}
}

func TestParse_HTMLAlternative(t *testing.T) {
	msg := parseEmail(t, testemail.Options{
		Body: "R&amp;D update",
		HTML: "<p>R&amp;D <b>update</b></p>",
	})
	if msg.BodyHTML == "" {
		t.Fatal("BodyHTML not populated")
	}
	if got := msg.GetBodyText(); got != "R&D update" {
		t.Errorf("GetBodyText() = %q", got)
	}
	if got := StripHTML(msg.BodyHTML); got != "R&D update" {
		t.Errorf("StripHTML(BodyHTML) = %q", got)
	}
}

func TestParse_Latin1Charset(t *testing.T) {
	raw := []byte("From: sender@example.com\r\nTo: recipient@example.com\r\nSubject: Caf\xe9\r\nContent-Type: text/plain; charset=iso-8859-1\r\n\r\nCaf\xe9 &amp; lait")

	msg := mustParse(t, raw)
	if got := msg.GetBodyText(); got != "Café & lait" {
		t.Errorf("GetBodyText() = %q, want %q", got, "Café & lait")
	}
	testutil.AssertValidUTF8(t, msg.Subject)
}

func TestParse_GroupAddress(t *testing.T) {
	msg := parseEmail(t, testemail.Options{
		To:   "team: alice@example.com, bob@example.com;",
		Body: "Body",
	})
	got := make([]string, len(msg.To))
	for i, addr := range msg.To {
		got[i] = addr.Email
	}
	testutil.AssertStrings(t, got, "alice@example.com", "bob@example.com")
}

func TestAddress_NoName(t *testing.T) {
	a := Address{Email: "x@example.com"}
	if a.DisplayName() != "x@example.com" || a.String() != "x@example.com" {
		t.Errorf("DisplayName() = %q, String() = %q", a.DisplayName(), a.String())
	}
}

func TestMessage_GetBodyText(t *testing.T) {
	msg := &Message{BodyText: "plain", BodyHTML: "<p>html</p>"}
	if got := msg.GetBodyText(); got != "plain" {
		t.Errorf("GetBodyText() = %q, want %q", got, "plain")
	}

	msg = &Message{BodyHTML: "<p>html &amp; only</p>"}
	if got := msg.GetBodyText(); got != "html & only" {
		t.Errorf("GetBodyText() = %q, want %q", got, "html & only")
	}

	msg = &Message{}
	if got := msg.GetBodyText(); got != "" {
		t.Errorf("GetBodyText() = %q, want empty", got)
	}
}

func TestParse_Garbage(t *testing.T) {
	// enmime tolerates almost anything; the body must at least survive.
	msg, err := Parse([]byte("not really a message"))
	if err != nil {
		t.Skipf("enmime rejected input: %v", err)
	}
	if !strings.Contains(msg.BodyText+msg.BodyHTML, "not really") && len(msg.Errors) == 0 {
		t.Errorf("unexpected parse result: %+v", msg)
	}
}
