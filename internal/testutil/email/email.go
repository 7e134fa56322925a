// Package email provides test helpers for constructing raw RFC 5322 messages.
package email

import (
	"sort"
	"strings"
)

// Options configures a raw message for testing.
type Options struct {
	From        string
	To          string
	Subject     string
	ContentType string
	Body        string
	// HTML, when set, makes the message multipart/alternative with Body as
	// the text/plain part and HTML as the text/html part.
	HTML    string
	Headers map[string]string
}

const boundary = "entdecode-boundary"

// MakeRaw constructs a raw message with \r\n line endings.
func MakeRaw(opts Options) []byte {
	var b strings.Builder

	if opts.From == "" {
		opts.From = "sender@example.com"
	}
	if opts.To == "" {
		opts.To = "recipient@example.com"
	}
	if opts.Subject == "" {
		opts.Subject = "Test"
	}

	b.WriteString("From: " + opts.From + "\r\n")
	b.WriteString("To: " + opts.To + "\r\n")
	b.WriteString("Subject: " + opts.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	keys := make([]string, 0, len(opts.Headers))
	for k := range opts.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k + ": " + opts.Headers[k] + "\r\n")
	}

	if opts.HTML == "" {
		ct := opts.ContentType
		if ct == "" {
			ct = `text/plain; charset="utf-8"`
		}
		b.WriteString("Content-Type: " + ct + "\r\n\r\n")
		b.WriteString(opts.Body)
		return []byte(b.String())
	}

	b.WriteString(`Content-Type: multipart/alternative; boundary="` + boundary + "\"\r\n\r\n")
	if opts.Body != "" {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
		b.WriteString(opts.Body + "\r\n")
	}
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(opts.HTML + "\r\n")
	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}
