package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/msgtext/entdecode/internal/entity"
	"github.com/msgtext/entdecode/internal/textutil"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/transform"
)

// errNothingDecoded is returned by decode when no input held a decodable
// reference and fallback output is disabled.
var errNothingDecoded = errors.New("no character references decoded")

var (
	decodeCharset  string
	decodeFallback bool
	decodeStream   bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode [file...]",
	Short: "Decode character references in files or stdin",
	Long: `Decode HTML character references in each file, or in stdin when no
file is given ("-" also names stdin). Results are written in argument order.

Input is converted to UTF-8 first, using --charset or [decode] charset
("auto" detects legacy encodings).

With --fallback, input without any decodable reference is printed
unchanged. Without it, such input prints nothing, and the command fails
when no input produced a result.

--stream decodes while reading, for input of any size. Malformed references
are always copied through, and charset "auto" is read as UTF-8.

Examples:
  echo 'Caf&eacute; &amp; bar' | entdecode decode
  entdecode decode --charset windows-1252 --fallback=false title.txt`,
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringVar(&decodeCharset, "charset", "", "input charset (default from config, \"auto\" detects)")
	decodeCmd.Flags().BoolVar(&decodeFallback, "fallback", true, "print input unchanged when nothing was decoded (default from config)")
	decodeCmd.Flags().BoolVar(&decodeStream, "stream", false, "decode while reading, without size limit")
}

type decodeResult struct {
	text    string
	decoded bool
}

func runDecode(cmd *cobra.Command, args []string) error {
	charset := cfg.Decode.Charset
	if cmd.Flags().Changed("charset") {
		charset = decodeCharset
	}
	fallback := cfg.Decode.Fallback
	if cmd.Flags().Changed("fallback") {
		fallback = decodeFallback
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	if decodeStream {
		return streamDecode(cmd.InOrStdin(), cmd.OutOrStdout(), paths, charset)
	}

	results := make([]decodeResult, len(paths))
	stdin := cmd.InOrStdin()

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Decode.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := readInputFile(stdin, path, cfg.Decode.MaxInputBytes)
			if err != nil {
				return err
			}
			text, err := textutil.ToUTF8(data, charset)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			res := decodeResult{text: text}
			if decoded, ok := entity.DecodeString(text); ok {
				res = decodeResult{text: decoded, decoded: true}
			}
			logger.Debug("decoded input", "path", path, "bytes", len(data), "found", res.decoded)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return writeDecodeResults(cmd.OutOrStdout(), results, fallback)
}

// writeDecodeResults prints each result, or the raw input when nothing was
// decoded and fallback is set. A newline follows each printed result on a
// terminal; otherwise output is written exactly.
func writeDecodeResults(w io.Writer, results []decodeResult, fallback bool) error {
	newline := isTerminal(w)
	found := false
	for _, res := range results {
		found = found || res.decoded
		if !res.decoded && !fallback {
			continue
		}
		if _, err := io.WriteString(w, res.text); err != nil {
			return err
		}
		if newline {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	if !found && !fallback {
		return errNothingDecoded
	}
	return nil
}

// streamDecode copies each input to w through the charset and reference
// decoders.
func streamDecode(stdin io.Reader, w io.Writer, paths []string, charset string) error {
	var t transform.Transformer = entity.NewDecoder()
	switch strings.ToLower(charset) {
	case "", "auto", "utf-8", "utf8":
	default:
		enc := textutil.GetEncodingByName(charset)
		if enc == nil {
			return fmt.Errorf("%w: %q", textutil.ErrUnknownCharset, charset)
		}
		t = transform.Chain(enc.NewDecoder(), entity.NewDecoder())
	}

	for _, path := range paths {
		f, err := openInput(stdin, path)
		if err != nil {
			return err
		}
		t.Reset()
		_, err = io.Copy(w, transform.NewReader(f, t))
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
