package docindex

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// jsonObject is a JSON object that remembers key order. A repeated key
// keeps its first position and takes the last value.
type jsonObject struct {
	keys   []string
	values map[string]any
}

func newJSONObject() *jsonObject {
	return &jsonObject{values: make(map[string]any)}
}

func (o *jsonObject) set(key string, value any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// decodeOrderedJSON parses data into nil, bool, json.Number, string, []any
// or *jsonObject values. Trailing content after the top-level value is an
// error.
func decodeOrderedJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	value, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, &ParseError{Offset: dec.InputOffset(), Err: errors.New("unexpected data after top-level value")}
	}
	return value, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := newJSONObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, want string", keyTok)
				}
				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj.set(key, value)
			}
			if err := closeJSONValue(dec); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			items := []any{}
			for dec.More() {
				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, value)
			}
			if err := closeJSONValue(dec); err != nil {
				return nil, err
			}
			return items, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	default:
		return t, nil
	}
}

func closeJSONValue(dec *json.Decoder) error {
	if _, err := dec.Token(); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// prettyJSON renders v with a two-space indent, keys in source order and
// non-ASCII text left unescaped.
func prettyJSON(v any) string {
	var b strings.Builder
	writeJSON(&b, v, "  ", 0)
	return b.String()
}

// compactJSON renders v on one line with ", " and ": " separators.
func compactJSON(v any) string {
	var b strings.Builder
	writeJSON(&b, v, "", 0)
	return b.String()
}

func writeJSON(b *strings.Builder, v any, indent string, depth int) {
	newline := func(d int) {
		if indent == "" {
			return
		}
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(indent, d))
	}
	itemSep := ", "
	if indent != "" {
		itemSep = ","
	}

	switch t := v.(type) {
	case *jsonObject:
		if len(t.keys) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteByte('{')
		for i, key := range t.keys {
			if i > 0 {
				b.WriteString(itemSep)
			}
			newline(depth + 1)
			writeJSONString(b, key)
			b.WriteString(": ")
			writeJSON(b, t.values[key], indent, depth+1)
		}
		newline(depth)
		b.WriteByte('}')
	case []any:
		if len(t) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				b.WriteString(itemSep)
			}
			newline(depth + 1)
			writeJSON(b, item, indent, depth+1)
		}
		newline(depth)
		b.WriteByte(']')
	case string:
		writeJSONString(b, t)
	default:
		b.WriteString(jsonScalar(t))
	}
}

func writeJSONString(b *strings.Builder, s string) {
	const hex = "0123456789abcdef"
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hex[r>>4])
				b.WriteByte(hex[r&0xF])
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

func jsonScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case json.Number:
		return t.String()
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// stringifyJSON renders a value for an index entry: strings are used as is,
// scalars as their JSON literal and containers as compact JSON.
func stringifyJSON(v any) string {
	switch v.(type) {
	case *jsonObject, []any:
		return compactJSON(v)
	default:
		return jsonScalar(v)
	}
}
