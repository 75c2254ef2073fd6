package transfer

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/roulette/internal/ident"
	"github.com/roach88/roulette/internal/model"
)

// CSVExtension is appended to exported list files and stripped from imported ones.
const CSVExtension = ".csv"

var lineBreak = regexp.MustCompile(`\r?\n`)

// ExportCSV writes one line per item of list. Every line is wrapped in
// double quotes with embedded quotes doubled. Lines are joined by "\n" with
// no trailing newline; an empty list writes nothing.
func ExportCSV(w io.Writer, list model.List) error {
	rows := make([]string, len(list.Items))
	for i, it := range list.Items {
		rows[i] = `"` + strings.ReplaceAll(it.Text, `"`, `""`) + `"`
	}
	if _, err := io.WriteString(w, strings.Join(rows, "\n")); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ParseCSV reads item texts from r.
//
// The input is decoded as UTF-8 (a UTF-8 or UTF-16 byte order mark is
// honoured and dropped) and NFC-normalised. It is split on "\n" or "\r\n",
// each line is trimmed and blank lines are dropped. A line that both starts
// and ends with a double quote loses one layer of wrapping quotes and has
// doubled quotes collapsed; any other line is taken verbatim. A quoted line
// that unquotes to nothing yields an empty text, so exported empty items
// survive a round trip.
func ParseCSV(r io.Reader) ([]string, error) {
	decoded := transform.NewReader(r, transform.Chain(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		norm.NFC,
	))
	b, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	texts := []string{}
	for _, line := range SplitLines(string(b)) {
		if len(line) >= 2 && strings.HasPrefix(line, `"`) && strings.HasSuffix(line, `"`) {
			line = strings.ReplaceAll(line[1:len(line)-1], `""`, `"`)
		} else if line == `"` {
			line = ""
		}
		texts = append(texts, line)
	}
	return texts, nil
}

// SplitLines splits text on "\n" or "\r\n", trims every line and drops
// blank ones. Texts are NFC-normalised. It backs both CSV import and bulk
// item entry.
func SplitLines(text string) []string {
	out := []string{}
	for _, line := range lineBreak.Split(text, -1) {
		line = strings.TrimSpace(norm.NFC.String(line))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// NewItems mints one item per text, in order.
func NewItems(texts []string, ids ident.Generator) []model.Item {
	items := make([]model.Item, len(texts))
	for i, text := range texts {
		items[i] = model.Item{ID: ids.Generate(), Text: norm.NFC.String(text)}
	}
	return items
}

// ListNameFromFile derives a list name from an imported file path: the base
// name with a trailing ".csv" (any case) removed.
func ListNameFromFile(path string) string {
	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), CSVExtension) {
		name = name[:len(name)-len(CSVExtension)]
	}
	return name
}

// CSVFileName is the default export file name for a list.
func CSVFileName(listName string) string {
	return listName + CSVExtension
}
