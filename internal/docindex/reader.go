package docindex

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readFile reads path and maps a missing file to NotFoundError.
func readFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}

// decodeText returns raw as a string. Bytes that are not valid UTF-8 are
// decoded once as ISO-8859-1. A leading byte-order mark is dropped.
func decodeText(path string, raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", &DecodeError{Path: path, Err: err}
	}
	return string(decoded), nil
}

// ReadText returns the non-empty trimmed lines of a text file in order.
func ReadText(path string) ([]string, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}
	text, err := decodeText(path, raw)
	if err != nil {
		return nil, err
	}
	return SplitLines(text), nil
}

// SplitLines splits text on \n, \r\n and \r, trims every line and drops the
// ones left empty.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Table is a CSV file read with its first record as the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadCSV reads a CSV file. Every row is padded or truncated to the header
// width so row[i] always belongs to Header[i].
func ReadCSV(path string) (*Table, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}
	text, err := decodeText(path, raw)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	table := &Table{Header: []string{}, Rows: [][]string{}}
	first := true
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &ParseError{Path: path, Line: perr.Line, Column: perr.Column, Err: perr.Err}
			}
			return nil, &ParseError{Path: path, Err: err}
		}
		if first {
			table.Header = record
			first = false
			continue
		}
		table.Rows = append(table.Rows, fitRow(record, len(table.Header)))
	}
	return table, nil
}

func fitRow(record []string, width int) []string {
	if len(record) >= width {
		return record[:width]
	}
	row := make([]string, width)
	copy(row, record)
	return row
}

// ReadJSON parses a JSON file into an ordered value. JSON input gets no
// Latin-1 fallback: invalid UTF-8 is a DecodeError.
func ReadJSON(path string) (any, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return nil, &DecodeError{Path: path, Err: errors.New("invalid UTF-8")}
	}

	value, err := decodeOrderedJSON(raw)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
			return nil, perr
		}
		var serr *json.SyntaxError
		if errors.As(err, &serr) {
			return nil, &ParseError{Path: path, Offset: serr.Offset, Err: err}
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	return value, nil
}
