package organizer

import (
	"fmt"
	"strconv"
	"strings"
)

// DragToken names what a drag gesture carries: a whole entry of a column
// ("entry:<column>:<entryKey>") or a question nested in a group
// ("nested:<groupID>:<questionID>").
type DragToken struct {
	Nested bool

	Column   Column
	EntryKey string

	GroupID    int
	QuestionID string
}

func EntryToken(c Column, entryKey string) DragToken {
	return DragToken{Column: c, EntryKey: entryKey}
}

func NestedToken(groupID int, questionID string) DragToken {
	return DragToken{Nested: true, GroupID: groupID, QuestionID: questionID}
}

func (t DragToken) String() string {
	if t.Nested {
		return fmt.Sprintf("nested:%d:%s", t.GroupID, t.QuestionID)
	}
	return fmt.Sprintf("entry:%s:%s", t.Column, t.EntryKey)
}

// MarshalText encodes t in its string form so JSON carries the same token
// the client sent to drag/start.
func (t DragToken) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *DragToken) UnmarshalText(b []byte) error {
	v, err := ParseDragToken(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func ParseDragToken(s string) (DragToken, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 3)
	if len(parts) != 3 || parts[2] == "" {
		return DragToken{}, fmt.Errorf("malformed drag token %q", s)
	}
	switch parts[0] {
	case "entry":
		c, err := ParseColumn(parts[1])
		if err != nil {
			return DragToken{}, fmt.Errorf("drag token %q: %w", s, err)
		}
		return EntryToken(c, parts[2]), nil
	case "nested":
		gid, err := strconv.Atoi(parts[1])
		if err != nil {
			return DragToken{}, fmt.Errorf("drag token %q: bad group id", s)
		}
		return NestedToken(gid, parts[2]), nil
	}
	return DragToken{}, fmt.Errorf("unknown drag token kind %q", parts[0])
}

// HoverTarget is the element under the pointer: an entry row, or a nested
// row inside a group (QuestionID set). Top and Height are the element's
// vertical bounds in the same coordinate space as the pointer.
type HoverTarget struct {
	EntryKey   string  `json:"entry_key"`
	QuestionID string  `json:"question_id,omitempty"`
	Top        float64 `json:"top"`
	Height     float64 `json:"height"`
}

// InsertAfter reports whether pointerY is strictly past the vertical
// midpoint of the target. Exactly on the midpoint inserts before.
func (h HoverTarget) InsertAfter(pointerY float64) bool {
	return pointerY > h.Top+h.Height/2
}

// DragSession carries the bookkeeping of one gesture between StartDrag and
// DragEnd.
type DragSession struct {
	Token *DragToken `json:"token,omitempty"`

	Column      Column `json:"column,omitempty"`
	TargetKey   string `json:"target_entry_key,omitempty"`
	TargetItem  string `json:"target_question_id,omitempty"`
	InsertAfter bool   `json:"insert_after"`
}

func (s DragSession) Active() bool { return s.Token != nil }

// Over records the hover state for a pointer move over column c.
func (s DragSession) Over(c Column, target *HoverTarget, pointerY float64) DragSession {
	s.Column = c
	s.TargetKey, s.TargetItem, s.InsertAfter = "", "", false
	if target != nil {
		s.TargetKey = target.EntryKey
		s.TargetItem = target.QuestionID
		s.InsertAfter = target.InsertAfter(pointerY)
	}
	return s
}
