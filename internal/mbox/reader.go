// Package mbox splits mboxo/mboxrd mailbox files into messages.
//
// A message starts at a "From " line that opens the file or follows an
// empty line. Body lines matching ^>+From  have one '>' removed on read.
package mbox

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// readBufferBytes is the longest line fragment handled in one piece. Longer
// lines are read in several fragments and count in full toward the message
// size limit.
const readBufferBytes = 64 * 1024

// ErrMessageTooLarge is returned by Next for a message over the size limit.
// The reader skips past it, so Next may be called again.
var ErrMessageTooLarge = errors.New("mbox message exceeds max size")

// Message is a single message from an mbox file.
type Message struct {
	// FromLine is the separator line without its line ending.
	FromLine string
	// Raw is the RFC 5322 message, separator excluded.
	Raw []byte
}

// Reader reads messages one at a time.
type Reader struct {
	br          *bufio.Reader
	maxBytes    int64
	pendingFrom string
	havePending bool
	done        bool
	midLine     bool // the last fragment did not end its line
}

var fromPrefix = []byte("From ")

// NewReader returns a reader over r. Messages larger than maxMessageBytes
// are reported with ErrMessageTooLarge; a limit <= 0 disables the check.
func NewReader(r io.Reader, maxMessageBytes int64) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, readBufferBytes), maxBytes: maxMessageBytes}
}

// IsMbox reports whether data begins with an mbox separator line.
func IsMbox(data []byte) bool {
	return bytes.HasPrefix(data, fromPrefix)
}

// Next returns the next message, or io.EOF after the last one.
func (r *Reader) Next() (*Message, error) {
	if r.done {
		return nil, io.EOF
	}

	// Skip anything before the first separator.
	for !r.havePending {
		frag, start, err := r.readFragment()
		if start && bytes.HasPrefix(frag, fromPrefix) {
			if err := r.takeSeparator(frag); err != nil {
				return nil, err
			}
			continue
		}
		if err == io.EOF {
			r.done = true
			return nil, io.EOF
		}
		if err != nil {
			r.done = true
			return nil, fmt.Errorf("read mbox: %w", err)
		}
	}

	msg := &Message{FromLine: r.pendingFrom}
	r.havePending = false

	var raw bytes.Buffer
	var size int64
	tooLarge := false
	prevBlank := false
	for {
		frag, start, err := r.readFragment()
		if len(frag) > 0 {
			if start && prevBlank && bytes.HasPrefix(frag, fromPrefix) {
				if err := r.takeSeparator(frag); err != nil {
					return nil, err
				}
				break
			}
			if start {
				prevBlank = len(trimEOL(frag)) == 0
				frag = unescapeFrom(frag)
			}

			size += int64(len(frag))
			if r.maxBytes > 0 && size > r.maxBytes && !tooLarge {
				tooLarge = true
				raw.Reset()
			}
			if !tooLarge {
				raw.Write(frag)
			}
		}
		if err == io.EOF {
			r.done = true
			break
		}
		if err != nil {
			r.done = true
			return nil, fmt.Errorf("read mbox: %w", err)
		}
	}

	if tooLarge {
		return nil, fmt.Errorf("%w: %s (limit %d bytes)", ErrMessageTooLarge, msg.FromLine, r.maxBytes)
	}
	// The blank line before the next separator belongs to the mbox format.
	msg.Raw = trimFinalBlankLine(raw.Bytes())
	return msg, nil
}

// readFragment returns the next line, or the next buffer-sized piece of a
// longer one. start reports whether the fragment begins a line. The slice is
// only valid until the next read.
func (r *Reader) readFragment() (frag []byte, start bool, err error) {
	start = !r.midLine
	frag, err = r.br.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		err = nil
	}
	r.midLine = err == nil && len(frag) > 0 && frag[len(frag)-1] != '\n'
	return frag, start, err
}

// takeSeparator records frag as the pending separator and discards the rest
// of an overlong separator line.
func (r *Reader) takeSeparator(frag []byte) error {
	r.pendingFrom = string(trimEOL(frag))
	r.havePending = true
	for r.midLine {
		_, _, err := r.readFragment()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			r.done = true
			return fmt.Errorf("read mbox: %w", err)
		}
	}
	return nil
}

func trimEOL(line []byte) []byte {
	return bytes.TrimRight(line, "\r\n")
}

func unescapeFrom(line []byte) []byte {
	i := 0
	for i < len(line) && line[i] == '>' {
		i++
	}
	if i > 0 && bytes.HasPrefix(line[i:], fromPrefix) {
		return line[1:]
	}
	return line
}

func trimFinalBlankLine(b []byte) []byte {
	switch {
	case bytes.HasSuffix(b, []byte("\r\n\r\n")):
		return b[:len(b)-2]
	case bytes.HasSuffix(b, []byte("\n\n")):
		return b[:len(b)-1]
	}
	return b
}
