package types

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// TextList is a list of plain-text resume entries. Models sometimes return
// entries as objects ({"title": "Dev", "company": "Acme"}), numbers or a
// single string; decoding flattens each element into one line of text
// instead of dropping it. Blank elements are skipped.
type TextList []string

func (l *TextList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if len(data) == 0 || data[0] != '[' {
		text, err := flattenJSON(data)
		if err != nil {
			return err
		}
		*l = TextList{}
		if text != "" {
			*l = TextList{text}
		}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(TextList, 0, len(items))
	for _, item := range items {
		text, err := flattenJSON(item)
		if err != nil {
			return err
		}
		if text != "" {
			out = append(out, text)
		}
	}
	*l = out
	return nil
}

// flattenJSON joins the scalar values of a JSON value with ", " in source
// order. Object keys are left out.
func flattenJSON(data []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	type level struct{ object, keyNext bool }
	var (
		stack []level
		parts []string
	)
	// valueDone flips the enclosing object back to expecting a key.
	valueDone := func() {
		if n := len(stack); n > 0 && stack[n-1].object {
			stack[n-1].keyNext = true
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, level{object: true, keyNext: true})
			case '[':
				stack = append(stack, level{})
			default:
				stack = stack[:len(stack)-1]
				valueDone()
			}
			continue
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].keyNext {
				stack[n-1].keyNext = false
				continue
			}
			if s := strings.TrimSpace(v); s != "" {
				parts = append(parts, s)
			}
		case json.Number:
			parts = append(parts, v.String())
		case bool:
			parts = append(parts, strconv.FormatBool(v))
		}
		valueDone()
	}
	return strings.Join(parts, ", "), nil
}
