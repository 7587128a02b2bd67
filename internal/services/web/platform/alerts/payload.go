package alerts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload reports an alert cookie that is not a JSON string
// holding a JSON array of strings.
var ErrMalformedPayload = errors.New("malformed alert payload")

// Decode recovers the alert messages from a cookie value.
//
// The producer JSON-encodes the message list and then JSON-encodes the
// resulting string again, so decoding takes two passes.
func Decode(raw string) ([]string, error) {
	var inner string
	if err := json.Unmarshal([]byte(raw), &inner); err != nil {
		return nil, fmt.Errorf("%w: outer layer: %v", ErrMalformedPayload, err)
	}
	list := bytes.TrimSpace([]byte(inner))
	if len(list) == 0 || list[0] != '[' {
		return nil, fmt.Errorf("%w: inner layer is not a JSON array", ErrMalformedPayload)
	}
	var messages []string
	if err := json.Unmarshal(list, &messages); err != nil {
		return nil, fmt.Errorf("%w: inner layer: %v", ErrMalformedPayload, err)
	}
	return messages, nil
}

// Encode produces the cookie value Decode accepts, byte for byte what a
// JavaScript producer gets from JSON.stringify(JSON.stringify(messages)).
// Markup is left unescaped; U+2028 and U+2029 are still written as escapes.
func Encode(messages []string) (string, error) {
	if messages == nil {
		messages = []string{}
	}
	list, err := marshalPlain(messages)
	if err != nil {
		return "", fmt.Errorf("encode alert list: %w", err)
	}
	value, err := marshalPlain(string(list))
	if err != nil {
		return "", fmt.Errorf("encode alert payload: %w", err)
	}
	return string(value), nil
}

func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
