// Package vote plans and applies optimistic vote updates.
//
// A viewer holds at most one active vote per entity. Casting the direction
// already held retracts it; casting the opposite direction switches in one
// step.
package vote

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Direction is a viewer's vote. The numeric values are the wire values of
// the vote mutation.
type Direction int

const (
	None Direction = 0
	Up   Direction = 1
	Down Direction = 2
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "none"
	}
}

// ParseDirection accepts up/down/none and their common aliases.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "upvote", "+", "+1", "1":
		return Up, nil
	case "down", "downvote", "-", "-1", "2":
		return Down, nil
	case "none", "clear", "0", "":
		return None, nil
	}
	return None, fmt.Errorf("invalid vote direction %q (want up or down)", s)
}

// MarshalJSON encodes the tri-state viewer_vote: true, false or null.
func (d Direction) MarshalJSON() ([]byte, error) {
	switch d {
	case Up:
		return []byte("true"), nil
	case Down:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes viewer_vote. Besides the bool/null form it accepts
// the numeric wire values and "up"/"down" strings.
func (d *Direction) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*d = Up
		return nil
	case "false":
		*d = Down
		return nil
	case "null", "":
		*d = None
		return nil
	}

	if n, err := strconv.Atoi(string(data)); err == nil {
		switch Direction(n) {
		case None, Up, Down:
			*d = Direction(n)
			return nil
		}
		return fmt.Errorf("invalid viewer_vote %d", n)
	}

	parsed, err := ParseDirection(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Tally is the vote state of one entity as displayed to one viewer.
type Tally struct {
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
	Viewer    Direction `json:"viewer_vote"`
}

// Score is upvotes minus downvotes.
func (t Tally) Score() int {
	return t.Upvotes - t.Downvotes
}

// Change is a pending vote: the snapshot to restore on failure, the state
// to show meanwhile, and the direction to send.
type Change struct {
	Before Tally
	After  Tally
	Sent   Direction
}

// Retracts reports whether the change clears the viewer's vote.
func (c Change) Retracts() bool {
	return c.Sent == None
}

// Plan resolves a requested direction against the current tally.
func Plan(current Tally, requested Direction) Change {
	next := current

	if requested == None || requested == current.Viewer {
		unvote(&next)
		return Change{Before: current, After: next, Sent: None}
	}

	unvote(&next)
	switch requested {
	case Up:
		next.Upvotes++
	case Down:
		next.Downvotes++
	}
	next.Viewer = requested

	return Change{Before: current, After: next, Sent: requested}
}

func unvote(t *Tally) {
	switch t.Viewer {
	case Up:
		t.Upvotes = decrement(t.Upvotes)
	case Down:
		t.Downvotes = decrement(t.Downvotes)
	}
	t.Viewer = None
}

func decrement(n int) int {
	if n <= 0 {
		return 0
	}
	return n - 1
}
