package search

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"
)

// MinQueryLength is the shortest query that is sent to the provider.
const MinQueryLength = 3

// DefaultDelay is the quiet period before a query is sent.
const DefaultDelay = 500 * time.Millisecond

// Debouncer runs only the last of a burst of calls, once the caller has been
// quiet for the delay.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer returns a debouncer; a non-positive delay selects DefaultDelay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn, replacing any call still waiting.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop drops the pending call, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Response is delivered for every query that reached the provider and was
// not superseded.
type Response struct {
	Query   string
	Results []Result
	Err     error
}

// Searcher debounces queries to a provider and drops responses of queries that
// were replaced before they finished.
type Searcher struct {
	provider Provider
	debounce *Debouncer
	deliver  func(Response)

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewSearcher returns a searcher delivering responses to deliver, which runs
// on a background goroutine.
func NewSearcher(p Provider, delay time.Duration, deliver func(Response)) *Searcher {
	return &Searcher{provider: p, debounce: NewDebouncer(delay), deliver: deliver}
}

// Query schedules a search for q. Queries shorter than MinQueryLength cancel
// anything pending and report false; the caller clears its results.
func (s *Searcher) Query(q string) bool {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	if utf8.RuneCountInString(q) < MinQueryLength {
		s.debounce.Stop()
		return false
	}
	s.debounce.Trigger(func() { s.run(seq, q) })
	return true
}

// Stop cancels pending and in-flight queries.
func (s *Searcher) Stop() {
	s.debounce.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Searcher) run(seq uint64, q string) {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		cancel()
		return
	}
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	results, err := s.provider.Search(ctx, q)

	s.mu.Lock()
	current := seq == s.seq
	s.mu.Unlock()
	if !current || errors.Is(err, context.Canceled) {
		return
	}
	s.deliver(Response{Query: q, Results: results, Err: err})
}
