package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/msgtext/entdecode/internal/emlx"
	"github.com/msgtext/entdecode/internal/mbox"
	"github.com/msgtext/entdecode/internal/mime"
	"github.com/spf13/cobra"
)

var showMessageJSON bool

var showMessageCmd = &cobra.Command{
	Use:   "show-message <file>",
	Short: "Show an .eml message with character references decoded",
	Long: `Parse an RFC 5322 message file and print its headers and body with
HTML character references decoded. HTML-only bodies are converted to text.
An mbox file prints each of its messages in turn, and Apple Mail .emlx
files are unwrapped first. Use "-" to read from stdin.

Examples:
  entdecode show-message newsletter.eml
  entdecode show-message newsletter.eml --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		br := bufio.NewReader(f)
		if head, _ := br.Peek(len("From ")); mbox.IsMbox(head) {
			return showMailbox(cmd.OutOrStdout(), mbox.NewReader(br, cfg.Decode.MaxInputBytes))
		}

		raw, err := readLimited(br, args[0], cfg.Decode.MaxInputBytes)
		if err != nil {
			return err
		}

		var dateSent time.Time
		if strings.EqualFold(filepath.Ext(args[0]), ".emlx") {
			m, err := emlx.Parse(raw)
			if err != nil {
				return err
			}
			raw, dateSent = m.Raw, m.DateSent
		}
		return showMessage(cmd.OutOrStdout(), args[0], raw, dateSent)
	},
}

// showMessage parses and prints one message. fallbackDate is used when the
// message has no parsable Date header.
func showMessage(w io.Writer, name string, raw []byte, fallbackDate time.Time) error {
	msg, err := mime.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse message: %w", err)
	}
	if msg.Date.IsZero() {
		msg.Date = fallbackDate
	}
	for _, e := range msg.Errors {
		logger.Debug("message parse warning", "file", name, "warning", e)
	}

	if showMessageJSON {
		return outputMessageJSON(w, msg)
	}
	return outputMessageText(w, msg)
}

// showMailbox prints every message of an mbox file. Oversized messages are
// logged and skipped.
func showMailbox(w io.Writer, r *mbox.Reader) error {
	for n := 1; ; n++ {
		m, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if errors.Is(err, mbox.ErrMessageTooLarge) {
			logger.Warn("skipping message", "index", n, "error", err)
			continue
		}
		if err != nil {
			return err
		}
		if !showMessageJSON && n > 1 {
			fmt.Fprintln(w)
		}
		if err := showMessage(w, m.FromLine, m.Raw, time.Time{}); err != nil {
			return fmt.Errorf("message %d: %w", n, err)
		}
	}
}

func init() {
	rootCmd.AddCommand(showMessageCmd)
	showMessageCmd.Flags().BoolVar(&showMessageJSON, "json", false, "output as JSON")
}

const rule = "───────────────────────────────────────────────────────────────────────────────"

func outputMessageText(w io.Writer, msg *mime.Message) error {
	if len(msg.From) > 0 {
		fmt.Fprintf(w, "From:    %s\n", formatAddresses(msg.From))
	}
	if len(msg.To) > 0 {
		fmt.Fprintf(w, "To:      %s\n", formatAddresses(msg.To))
	}
	if len(msg.Cc) > 0 {
		fmt.Fprintf(w, "Cc:      %s\n", formatAddresses(msg.Cc))
	}
	fmt.Fprintf(w, "Subject: %s\n", msg.DisplaySubject())
	if !msg.Date.IsZero() {
		fmt.Fprintf(w, "Date:    %s\n", msg.Date.Format(time.RFC1123))
	}

	fmt.Fprintln(w, rule)
	if body := msg.GetBodyText(); body != "" {
		fmt.Fprintln(w, body)
	} else {
		fmt.Fprintln(w, "[No body content available]")
	}
	return nil
}

func outputMessageJSON(w io.Writer, msg *mime.Message) error {
	addrs := func(list []mime.Address) []map[string]string {
		out := make([]map[string]string, len(list))
		for i, a := range list {
			out[i] = map[string]string{"email": a.Email, "name": a.DisplayName()}
		}
		return out
	}

	output := map[string]interface{}{
		"subject":    msg.DisplaySubject(),
		"message_id": msg.MessageID,
		"from":       addrs(msg.From),
		"to":         addrs(msg.To),
		"cc":         addrs(msg.Cc),
		"body_text":  msg.GetBodyText(),
	}
	if !msg.Date.IsZero() {
		output["date"] = msg.Date.Format(time.RFC3339)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func formatAddresses(addrs []mime.Address) string {
	parts := make([]string, len(addrs))
	for i, addr := range addrs {
		parts[i] = addr.String()
	}
	return strings.Join(parts, ", ")
}
