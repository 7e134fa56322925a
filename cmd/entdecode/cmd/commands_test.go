package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/msgtext/entdecode/internal/testutil"
	testemail "github.com/msgtext/entdecode/internal/testutil/email"
	"github.com/spf13/cobra"
)

// execute runs run on a throwaway command with the given stdin and args.
func execute(t *testing.T, run func(*cobra.Command, []string) error, stdin string, args ...string) (string, error) {
	t.Helper()
	c := &cobra.Command{Use: "test", RunE: run, SilenceUsage: true, SilenceErrors: true}
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetIn(strings.NewReader(stdin))
	if args == nil {
		args = []string{}
	}
	c.SetArgs(args)
	err := c.ExecuteContext(context.Background())
	return out.String(), err
}

func TestWriteEntityTable(t *testing.T) {
	var buf bytes.Buffer
	n := writeEntityTable(&buf, "eu")
	if n != 2 {
		t.Fatalf("rows = %d, want 2 (euml, euro)", n)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"NAME  CHAR  CODE POINT",
		"euml  ë     U+00EB",
		"euro  €     U+20AC",
	}
	testutil.AssertStrings(t, lines, want...)
}

func TestWriteEntityTable_BlankGlyphs(t *testing.T) {
	var buf bytes.Buffer
	writeEntityTable(&buf, "zw")
	testutil.AssertContainsAll(t, buf.String(), []string{"zwj", "U+200D", "zwnj", "U+200C"})
	for _, line := range strings.Split(buf.String(), "\n")[1:] {
		if strings.ContainsRune(line, '\u200d') || strings.ContainsRune(line, '\u200c') {
			t.Errorf("zero-width glyph printed: %q", line)
		}
	}
}

func TestWriteEntityTable_NoMatch(t *testing.T) {
	var buf bytes.Buffer
	if n := writeEntityTable(&buf, "zzz"); n != 0 || buf.Len() != 0 {
		t.Errorf("n = %d, output = %q", n, buf.String())
	}
}

func TestShowMessage(t *testing.T) {
	useTestConfig(t)
	raw := testemail.MakeRaw(testemail.Options{
		From:    `"Caf&eacute; Owner" <owner@example.com>`,
		Subject: "Menu &amp; prices",
		HTML:    "<p>Soup &ndash; 4&euro;</p>",
		Body:    "Soup &ndash; 4&euro;",
	})
	path := testutil.WriteFile(t, t.TempDir(), "menu.eml", raw)

	out, err := execute(t, showMessageCmd.RunE, "", path)
	testutil.MustNoErr(t, err, "show-message")
	testutil.AssertContainsAll(t, out, []string{
		"From:    Café Owner <owner@example.com>",
		"Subject: Menu & prices",
		"Soup – 4€",
	})
	testutil.AssertNotContains(t, out, "&amp;", "&eacute;", "&ndash;")
}

func TestShowMessage_JSON(t *testing.T) {
	useTestConfig(t)
	showMessageJSON = true
	t.Cleanup(func() { showMessageJSON = false })

	raw := testemail.MakeRaw(testemail.Options{Subject: "A &lt; B", Body: "x"})
	out, err := execute(t, showMessageCmd.RunE, string(raw), "-")
	testutil.MustNoErr(t, err, "show-message --json")

	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got["subject"] != "A < B" {
		t.Errorf("subject = %v", got["subject"])
	}
}

func TestFormatFeed(t *testing.T) {
	useTestConfig(t)

	out, err := execute(t, formatFeedCmd.RunE, "", "<cite>Dune</cite>\n&amp; more")
	testutil.MustNoErr(t, err, "format-feed")
	if out != "\"Dune\" & more\n" {
		t.Errorf("got %q", out)
	}

	out, err = execute(t, formatFeedCmd.RunE, "  from\tstdin &hellip;  ")
	testutil.MustNoErr(t, err, "format-feed stdin")
	if out != "from stdin …\n" {
		t.Errorf("got %q", out)
	}
}

func TestServe_RefusesInsecureBind(t *testing.T) {
	c := useTestConfig(t)
	c.Server.BindAddr = "0.0.0.0"

	if _, err := execute(t, runServe, ""); err == nil || !strings.Contains(err.Error(), "refusing") {
		t.Fatalf("err = %v, want refusal", err)
	}
}

func TestShowMessage_Mbox(t *testing.T) {
	useTestConfig(t)
	data := "From a@example.com Mon Jan 1 00:00:00 2024\n" +
		"From: a@example.com\nSubject: First &amp; one\n\nBody one\n\n" +
		"From b@example.com Mon Jan 1 00:00:00 2024\n" +
		"From: b@example.com\nSubject: Second &gt; first\n\nBody two\n"

	out, err := execute(t, showMessageCmd.RunE, data, "-")
	testutil.MustNoErr(t, err, "show-message mbox")
	testutil.AssertContainsAll(t, out, []string{
		"Subject: First & one",
		"Body one",
		"Subject: Second > first",
		"Body two",
	})
	if strings.Index(out, "Body one") > strings.Index(out, "Body two") {
		t.Error("messages out of order")
	}
}

func TestShowMessage_Emlx(t *testing.T) {
	useTestConfig(t)
	raw := "From: a@example.com\r\nSubject: Na&iuml;ve\r\n\r\nBody\r\n"
	meta := `<plist version="1.0"><dict><key>date-sent</key><real>252460800</real></dict></plist>`
	path := testutil.WriteFile(t, t.TempDir(), "1.emlx", []byte(fmt.Sprintf("%d\n%s%s", len(raw), raw, meta)))

	out, err := execute(t, showMessageCmd.RunE, "", path)
	testutil.MustNoErr(t, err, "show-message emlx")
	testutil.AssertContainsAll(t, out, []string{"Subject: Naïve", "Date:    Thu, 01 Jan 2009 00:00:00 UTC"})
}
