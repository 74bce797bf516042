package ordercode

import (
	"sync"

	"github.com/go-faster/errors"
)

// ErrNotSeeded is reported as the fallback reason when Next is called before
// the sequencer was seeded from the backend.
var ErrNotSeeded = errors.New("order code sequencer not seeded")

// Result is the outcome of Next. When FellBack is true, Code holds the
// fallback default and Reason explains why the current code was not used.
type Result struct {
	Code     string
	FellBack bool
	Reason   error
}

// Sequencer hands out order codes by incrementing the last seen code.
//
// Next never fails: an unseeded sequencer or a malformed current code yields
// the fallback default, so placing an order is never blocked by a failed code
// fetch. The price is a possible collision with the backend's own counter.
type Sequencer struct {
	mu       sync.Mutex
	current  string
	ready    bool
	fallback string
}

// NewSequencer returns an unseeded sequencer. An empty fallback means
// DefaultFallback.
func NewSequencer(fallback string) *Sequencer {
	if fallback == "" {
		fallback = DefaultFallback
	}
	return &Sequencer{fallback: fallback}
}

// Seed stores the backend's current code verbatim and marks the sequencer
// ready. The value is not validated until Next.
func (s *Sequencer) Seed(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = code
	s.ready = true
}

// Ready reports whether the sequencer has been seeded or has issued a code.
func (s *Sequencer) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ready
}

// Current returns the last stored code, or "" when unseeded.
func (s *Sequencer) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// Next increments the serial of the current code, stores and returns it.
// The fallback default is stored as current too, so consecutive fallbacks
// continue from it instead of repeating it.
func (s *Sequencer) Next() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return s.fallBack(ErrNotSeeded)
	}

	code, err := Parse(s.current)
	if err != nil {
		return s.fallBack(err)
	}

	s.current = code.Succ().String()
	return Result{Code: s.current}
}

func (s *Sequencer) fallBack(reason error) Result {
	s.current = s.fallback
	s.ready = true
	return Result{Code: s.fallback, FellBack: true, Reason: reason}
}
