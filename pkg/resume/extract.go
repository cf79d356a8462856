// Package resume pulls plain text out of the first page of an uploaded
// résumé.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoPages is returned when the document parses but has no pages.
var ErrNoPages = errors.New("document has no pages")

// ErrEmptyDocument is returned for a zero-length upload.
var ErrEmptyDocument = errors.New("document is empty")

// ExtractFirstPage reads a PDF from data and returns the text of page one.
// Each text row of the page ends a line.
func ExtractFirstPage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}
	return Extract(bytes.NewReader(data), int64(len(data)))
}

// Extract is ExtractFirstPage over an io.ReaderAt of the given size.
func Extract(r io.ReaderAt, size int64) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("parsing pdf: %v", rec)
		}
	}()

	fragments, err := firstPageFragments(r, size)
	if err != nil {
		return "", err
	}
	return MergeFragments(fragments), nil
}

func firstPageFragments(r io.ReaderAt, size int64) ([]Fragment, error) {
	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	if doc.NumPage() < 1 {
		return nil, ErrNoPages
	}

	page := doc.Page(1)
	if page.V.IsNull() {
		return nil, ErrNoPages
	}

	return layoutRows(page.Content().Text), nil
}

// Glyphs closer than this fraction of the font size are one row.
const rowTolerance = 0.5

// A horizontal gap wider than this fraction of the font size separates words.
const wordGap = 0.25

// layoutRows groups glyphs by baseline, top of the page first, and reads each
// row left to right. Every row ends a line.
func layoutRows(glyphs []pdf.Text) []Fragment {
	sorted := make([]pdf.Text, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var fragments []Fragment
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sameRow(sorted[start], sorted[i]) {
			continue
		}
		fragments = append(fragments, Fragment{Str: rowText(sorted[start:i]), EOL: true})
		start = i
	}
	return fragments
}

func sameRow(anchor, t pdf.Text) bool {
	tolerance := math.Max(math.Abs(anchor.FontSize)*rowTolerance, 1)
	return math.Abs(anchor.Y-t.Y) <= tolerance
}

func rowText(row []pdf.Text) string {
	sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

	var sb strings.Builder
	for i, t := range row {
		if i > 0 {
			prev := row[i-1]
			gap := t.X - (prev.X + prev.W)
			if gap > math.Abs(t.FontSize)*wordGap && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(t.S, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.S)
	}
	return sb.String()
}
