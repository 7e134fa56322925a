package cmd

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/msgtext/entdecode/internal/entity"
	"github.com/spf13/cobra"
)

var entitiesCmd = &cobra.Command{
	Use:   "entities [prefix]",
	Short: "List known named character references",
	Long: `List the named character references entdecode understands, with their
glyph and code point. An optional prefix filters by name (case-sensitive).

Examples:
  entdecode entities
  entdecode entities e`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 1 {
			prefix = strings.TrimPrefix(args[0], "&")
		}
		n := writeEntityTable(cmd.OutOrStdout(), prefix)
		if n == 0 {
			return fmt.Errorf("no character references match %q", prefix)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(entitiesCmd)
}

// glyphColumn is the display width reserved for the glyph.
const glyphColumn = 4

// writeEntityTable prints matching references as aligned columns and returns
// how many were printed.
func writeEntityTable(w io.Writer, prefix string) int {
	type row struct {
		name string
		r    rune
	}
	var rows []row
	nameWidth := len("NAME")
	for name, r := range entity.All() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rows = append(rows, row{name, r})
		nameWidth = max(nameWidth, len(name))
	}
	if len(rows) == 0 {
		return 0
	}

	fmt.Fprintf(w, "%-*s  %s  %s\n", nameWidth, "NAME", runewidth.FillRight("CHAR", glyphColumn), "CODE POINT")
	for _, r := range rows {
		fmt.Fprintf(w, "%-*s  %s  U+%04X\n", nameWidth, r.name, runewidth.FillRight(glyph(r.r), glyphColumn), r.r)
	}
	return len(rows)
}

// glyph returns the printable form of r. Spaces, format characters and
// zero-width marks have no useful glyph and print as blank.
func glyph(r rune) string {
	if unicode.IsSpace(r) || !unicode.IsGraphic(r) || runewidth.RuneWidth(r) == 0 {
		return ""
	}
	return string(r)
}
