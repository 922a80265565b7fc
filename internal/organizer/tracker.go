package organizer

import (
	"bytes"
	"encoding/json"
)

// Tracker remembers the board as last loaded or saved and reports whether
// the current board differs from it.
type Tracker struct {
	snapshot []byte
}

func fingerprint(b Board) []byte {
	data, err := json.Marshal(b)
	if err != nil {
		return nil
	}
	return data
}

func (t *Tracker) Reset(b Board) { t.snapshot = fingerprint(b) }

func (t *Tracker) IsDirty(b Board) bool {
	if t.snapshot == nil {
		return false
	}
	cur := fingerprint(b)
	return cur == nil || !bytes.Equal(cur, t.snapshot)
}
