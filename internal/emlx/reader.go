// Package emlx reads Apple Mail .emlx message files.
//
// An .emlx file holds a decimal byte count on its first line, that many
// bytes of RFC 5322 message, and an optional XML property list of
// Apple Mail metadata.
package emlx

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"howett.net/plist"
)

// appleEpoch is the zero point of Apple Mail timestamps.
var appleEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// Message is a parsed .emlx file.
type Message struct {
	Raw []byte

	// Metadata from the trailing property list. Zero when absent.
	DateSent    time.Time
	Flags       uint64
	OrigMailbox string
}

type metadata struct {
	DateSent    any    `plist:"date-sent"`
	Flags       uint64 `plist:"flags"`
	OrigMailbox string `plist:"original-mailbox"`
}

// Parse splits an .emlx file into its message and metadata. Unreadable
// metadata is ignored.
func Parse(data []byte) (*Message, error) {
	nl := bytes.IndexByte(data, '\n')
	if nl < 0 {
		return nil, fmt.Errorf("emlx: no byte count line")
	}
	count, err := strconv.ParseInt(string(bytes.TrimSpace(data[:nl])), 10, 64)
	if err != nil || count < 0 {
		return nil, fmt.Errorf("emlx: invalid byte count %q", bytes.TrimSpace(data[:nl]))
	}
	start := int64(nl + 1)
	end := start + count
	if end > int64(len(data)) {
		return nil, fmt.Errorf("emlx: byte count %d exceeds file size (available: %d)", count, int64(len(data))-start)
	}

	msg := &Message{Raw: data[start:end]}
	if rest := bytes.TrimSpace(data[end:]); len(rest) > 0 {
		var meta metadata
		if _, err := plist.Unmarshal(rest, &meta); err == nil {
			msg.DateSent = appleTime(meta.DateSent)
			msg.Flags = meta.Flags
			msg.OrigMailbox = meta.OrigMailbox
		}
	}
	return msg, nil
}

// appleTime converts a date-sent value, stored as <real> or <integer>
// depending on the Mail version.
func appleTime(v any) time.Time {
	var secs float64
	switch n := v.(type) {
	case float64:
		secs = n
	case int64:
		secs = float64(n)
	case uint64:
		secs = float64(n)
	default:
		return time.Time{}
	}
	return appleEpoch.Add(time.Duration(secs * float64(time.Second)))
}
