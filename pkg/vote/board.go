package vote

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Kind names the entity type a vote targets.
type Kind string

const (
	KindQuestion Kind = "question"
	KindAnswer   Kind = "answer"
)

// Ref identifies one votable entity.
type Ref struct {
	Kind Kind
	ID   int64
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.ID)
}

// SendFunc issues the vote mutation carrying the resolved direction.
type SendFunc func(ctx context.Context, dir Direction) error

// ErrInFlight is returned when a vote on the same entity is still pending.
var ErrInFlight = errors.New("a vote on this item is already in progress")

// Board holds the locally displayed tallies of one view. Votes are applied
// optimistically and rolled back to the captured snapshot when the mutation
// fails.
type Board struct {
	mu       sync.Mutex
	tallies  map[Ref]Tally
	inFlight map[Ref]bool
	onCommit func(Ref)
}

// NewBoard creates a board. onCommit, if set, runs after each successful
// mutation; views use it to invalidate cached collections.
func NewBoard(onCommit func(Ref)) *Board {
	return &Board{
		tallies:  make(map[Ref]Tally),
		inFlight: make(map[Ref]bool),
		onCommit: onCommit,
	}
}

// Seed records server state for ref. It is ignored while a vote on ref is
// pending so a refetch cannot clobber the optimistic value.
func (b *Board) Seed(ref Ref, t Tally) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inFlight[ref] {
		return
	}
	b.tallies[ref] = t
}

// Get returns the displayed tally for ref.
func (b *Board) Get(ref Ref) (Tally, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tallies[ref]
	return t, ok
}

// Cast plans the vote, shows the result immediately, then sends it. On
// failure the snapshot taken before the update is restored and the send
// error is returned alongside the restored tally.
func (b *Board) Cast(ctx context.Context, ref Ref, requested Direction, send SendFunc) (Tally, error) {
	b.mu.Lock()
	if b.inFlight[ref] {
		current := b.tallies[ref]
		b.mu.Unlock()
		return current, ErrInFlight
	}
	change := Plan(b.tallies[ref], requested)
	b.tallies[ref] = change.After
	b.inFlight[ref] = true
	b.mu.Unlock()

	err := send(ctx, change.Sent)

	b.mu.Lock()
	delete(b.inFlight, ref)
	if err != nil {
		b.tallies[ref] = change.Before
		b.mu.Unlock()
		return change.Before, err
	}
	b.mu.Unlock()

	if b.onCommit != nil {
		b.onCommit(ref)
	}
	return change.After, nil
}
