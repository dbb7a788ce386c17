// Package source turns a CSV export of old and new URLs into redirect records.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/rodydavis/redirectgen/internal/redirect"
)

// ErrNoColumn is returned when a column label is not in the header row.
var ErrNoColumn = errors.New("no column header")

// HeaderMode controls whether the first row is treated as a header.
type HeaderMode string

const (
	HeaderAuto    HeaderMode = "auto"
	HeaderPresent HeaderMode = "yes"
	HeaderAbsent  HeaderMode = "no"
)

// ParseHeaderMode accepts auto, yes/true and no/false.
func ParseHeaderMode(s string) (HeaderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return HeaderAuto, nil
	case "yes", "true":
		return HeaderPresent, nil
	case "no", "false":
		return HeaderAbsent, nil
	}
	return "", fmt.Errorf("invalid header mode %q, must be one of: auto, yes, no", s)
}

// Options describes the CSV layout and which rows to keep.
type Options struct {
	Delimiter rune
	QuoteChar rune
	// Old and New are 1-based column numbers or header labels.
	Old    string
	New    string
	Depth  int
	Header HeaderMode
	Filter *Filter
	Logger *slog.Logger
}

// Read parses every row of r into a record, in input order.
func Read(r io.Reader, opts Options) ([]redirect.Record, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.QuoteChar == 0 {
		opts.QuoteChar = '"'
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	log := opts.Logger

	unquote := func(s string) string { return s }
	if opts.QuoteChar != '"' {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		swap := swapRunes(opts.QuoteChar, '"')
		r = strings.NewReader(strings.Map(swap, string(b)))
		unquote = func(s string) string { return strings.Map(swap, s) }
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var (
		records  []redirect.Record
		oldCol   = -1
		newCol   = -1
		first    = true
		skipped  int
		filtered int
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		for i := range row {
			row[i] = unquote(row[i])
		}

		if first {
			first = false
			header := headerRow(row, opts)
			if header != nil && opts.Header == HeaderAuto {
				log.Info("first row read as header", "row", strings.Join(row, string(opts.Delimiter)))
			}
			if oldCol, err = resolveColumn(opts.Old, header); err != nil {
				return nil, err
			}
			if newCol, err = resolveColumn(opts.New, header); err != nil {
				return nil, err
			}
			if header != nil {
				log.Debug("using header row", "columns", len(header))
				continue
			}
		}

		if oldCol >= len(row) || newCol >= len(row) {
			return nil, fmt.Errorf("row %d: has %d columns, need %d", line, len(row), max(oldCol, newCol)+1)
		}
		oldURL, newURL := strings.TrimSpace(row[oldCol]), strings.TrimSpace(row[newCol])
		if oldURL == "" {
			skipped++
			log.Debug("skipping row without old url", "row", line)
			continue
		}
		oldPath, err := urlPath(oldURL)
		if err != nil {
			return nil, fmt.Errorf("row %d: old url: %w", line, err)
		}
		newPath, err := urlPath(newURL)
		if err != nil {
			return nil, fmt.Errorf("row %d: new url: %w", line, err)
		}
		if !opts.Filter.Allow(oldPath) {
			filtered++
			log.Debug("filtered", "row", line, "old", oldPath)
			continue
		}
		rec, err := redirect.NewRecord(oldPath, newPath, opts.Depth)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	log.Info("records loaded", "records", len(records), "skipped", skipped, "filtered", filtered)
	return records, nil
}

// headerRow returns row when it should be read as column labels.
func headerRow(row []string, opts Options) []string {
	switch opts.Header {
	case HeaderPresent:
		return row
	case HeaderAbsent:
		return nil
	}
	if isLabel(opts.Old) || isLabel(opts.New) {
		return row
	}
	oldIdx, _ := strconv.Atoi(opts.Old)
	newIdx, _ := strconv.Atoi(opts.New)
	for _, i := range []int{oldIdx - 1, newIdx - 1} {
		if i >= 0 && i < len(row) && looksLikeURL(row[i]) {
			return nil
		}
	}
	return row
}

func isLabel(col string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(col))
	return err != nil
}

// looksLikeURL accepts anything with a "/" and bare dotted hosts.
func looksLikeURL(s string) bool {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		return true
	}
	return strings.Contains(s, ".") && !strings.ContainsAny(s, " \t")
}

func resolveColumn(col string, header []string) (int, error) {
	col = strings.TrimSpace(col)
	if n, err := strconv.Atoi(col); err == nil {
		if n < 1 {
			return 0, fmt.Errorf("column number %d must be 1 or greater", n)
		}
		return n - 1, nil
	}
	for i, h := range header {
		if strings.TrimSpace(h) == col {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w '%s'", ErrNoColumn, col)
}

// urlPath drops scheme, host, query and fragment and keeps percent escapes.
// A cell like "www.example.com/a" is read as host plus path.
func urlPath(raw string) (string, error) {
	if hostless(raw) {
		raw = "//" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	p := u.EscapedPath()
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p, nil
}

func hostless(raw string) bool {
	if strings.HasPrefix(raw, "/") || strings.Contains(raw, "://") {
		return false
	}
	host, _, ok := strings.Cut(raw, "/")
	return ok && strings.Contains(host, ".") && !strings.ContainsAny(host, "?#")
}

func swapRunes(a, b rune) func(rune) rune {
	return func(r rune) rune {
		switch r {
		case a:
			return b
		case b:
			return a
		}
		return r
	}
}
