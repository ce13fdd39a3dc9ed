// Package rotation cycles through an ordered list of messages using a
// persisted index.
package rotation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNoMessages is returned when the message list is empty.
var ErrNoMessages = errors.New("no messages available")

// State is the persisted rotation pointer.
type State struct {
	Index int `json:"index"`
}

// Next returns the message at the current index and the advanced state.
//
// An index outside the list (the list shrank, or the file was edited by hand)
// is folded back into range rather than rejected.
func Next(messages []string, st State) (string, State, error) {
	n := len(messages)
	if n == 0 {
		return "", st, ErrNoMessages
	}
	idx := st.Index % n
	if idx < 0 {
		idx += n
	}
	return messages[idx], State{Index: (idx + 1) % n}, nil
}

// DecodeMessages reads a message document.
//
// The canonical form is a JSON object whose values, in document order, are
// the messages; keys are ignored. A plain array of strings is accepted too.
func DecodeMessages(r io.Reader) ([]string, error) {
	entries, err := DecodeEntries(r)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Body
	}
	return out, nil
}

// Entry is one message with the key it was stored under.
// Array documents get their position as key.
type Entry struct {
	Key  string
	Body string
}

// DecodeEntries is DecodeMessages keeping the keys.
//
// A key repeated in an object keeps its first position and its last value.
func DecodeEntries(r io.Reader) ([]Entry, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil, fmt.Errorf("messages must be a JSON object or array, got %v", tok)
	}

	var entries []Entry
	seen := make(map[string]int)
	for i := 0; dec.More(); i++ {
		key := fmt.Sprint(i)
		if delim == '{' {
			kt, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("read message key: %w", err)
			}
			key, _ = kt.(string)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("read message %q: %w", key, err)
		}
		var body string
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("message %q is not a string: %s", key, bytes.TrimSpace(raw))
		}
		if at, dup := seen[key]; dup && delim == '{' {
			entries[at].Body = body
			continue
		}
		seen[key] = len(entries)
		entries = append(entries, Entry{Key: key, Body: body})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	return entries, nil
}
