package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFLines returns the trimmed, non-empty text lines of every page of a PDF.
func PDFLines(path string) (lines []string, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	// The reader panics on some malformed content streams.
	defer func() {
		if rec := recover(); rec != nil {
			lines = nil
			err = fmt.Errorf("read pdf: %v", rec)
		}
	}()

	lines = []string{}
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read pdf page %d: %w", i, err)
		}
		for _, line := range strings.Split(strings.ReplaceAll(text, "\r", "\n"), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines, nil
}
