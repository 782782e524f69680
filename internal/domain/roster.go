package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RosterEntry links a chat handle to a Trello username.
type RosterEntry struct {
	Handle         string
	TrelloUsername string
}

// Roster is the persisted team roster. Handles are unique; insertion order is
// preserved so listings and the whole-team fallback are stable. The wire form
// is a flat JSON object keyed by chat handle, matching the stored blob.
type Roster struct {
	entries []RosterEntry
}

func NewRoster(entries ...RosterEntry) *Roster {
	r := &Roster{entries: make([]RosterEntry, 0, len(entries))}
	for _, e := range entries {
		r.set(e.Handle, e.TrelloUsername)
	}
	return r
}

func (r *Roster) Len() int {
	return len(r.entries)
}

func (r *Roster) IsEmpty() bool {
	return len(r.entries) == 0
}

// Entries returns a copy of the roster entries in insertion order.
func (r *Roster) Entries() []RosterEntry {
	out := make([]RosterEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Handles returns all chat handles in insertion order.
func (r *Roster) Handles() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Handle)
	}
	return out
}

// TrelloUsername returns the Trello username mapped to a chat handle.
func (r *Roster) TrelloUsername(handle string) (string, bool) {
	for _, e := range r.entries {
		if e.Handle == handle {
			return e.TrelloUsername, true
		}
	}
	return "", false
}

// HandleFor returns the first chat handle mapped to a Trello username,
// scanning in insertion order. Usernames are not required to be unique.
func (r *Roster) HandleFor(username string) (string, bool) {
	for _, e := range r.entries {
		if e.TrelloUsername == username {
			return e.Handle, true
		}
	}
	return "", false
}

// With returns a new roster with the handle mapped to the username. An
// existing handle keeps its position; a new handle is appended.
func (r *Roster) With(handle, username string) *Roster {
	next := &Roster{entries: make([]RosterEntry, len(r.entries))}
	copy(next.entries, r.entries)
	next.set(handle, username)
	return next
}

// Without returns a new roster without the handle, along with the Trello
// username that was removed. Removing an absent handle is a no-op and the
// second return is false.
func (r *Roster) Without(handle string) (*Roster, string, bool) {
	next := &Roster{entries: make([]RosterEntry, 0, len(r.entries))}
	removed := ""
	found := false
	for _, e := range r.entries {
		if e.Handle == handle {
			removed = e.TrelloUsername
			found = true
			continue
		}
		next.entries = append(next.entries, e)
	}
	return next, removed, found
}

func (r *Roster) set(handle, username string) {
	for i, e := range r.entries {
		if e.Handle == handle {
			r.entries[i].TrelloUsername = username
			return
		}
	}
	r.entries = append(r.entries, RosterEntry{Handle: handle, TrelloUsername: username})
}

// MarshalJSON writes the roster as a flat handle->username object with keys
// in insertion order.
func (r *Roster) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Handle)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.TrelloUsername)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat handle->username object, preserving the key
// order of the stored blob. A plain map round-trip would scramble it.
func (r *Roster) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("roster: expected JSON object, got %v", tok)
	}

	r.entries = r.entries[:0]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		handle, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("roster: expected string key, got %v", keyTok)
		}

		var username string
		if err := dec.Decode(&username); err != nil {
			return fmt.Errorf("roster: value for %q: %w", handle, err)
		}
		r.set(handle, username)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
