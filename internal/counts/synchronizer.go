// Package counts keeps the cart and wishlist badge counts in step with the backend.
//
// A single Synchronizer is shared by every surface that shows a badge. It fetches once
// when started and again whenever the signed-in identity changes or a mutation calls
// Refetch/Notify. It never polls.
package counts

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/swadbest/shopctl/internal/session"
)

// Counts are the derived badge numbers. They are always refetched, never computed locally.
type Counts struct {
	Cart     int `json:"cartCount"`
	Wishlist int `json:"wishlistCount"`
}

// FetchFunc loads the authoritative counts from the backend
type FetchFunc func(ctx context.Context) (Counts, error)

// SessionSource is the part of the session store the synchronizer reads
type SessionSource interface {
	Snapshot() session.Snapshot
	Subscribe(fn session.Listener) func()
}

// Synchronizer is the process-wide count store with subscriber notification
type Synchronizer struct {
	mu         sync.RWMutex
	counts     Counts
	identity   string
	generation uint64

	sess    SessionSource
	fetch   FetchFunc
	logger  *slog.Logger
	timeout time.Duration
	group   singleflight.Group

	subMu     sync.Mutex
	nextSubID int
	listeners map[int]func(Counts)

	baseCtx     context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	unsubscribe func()
}

// Option configures a Synchronizer
type Option func(*Synchronizer)

// WithLogger sets the logger used for failed fetches
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeout bounds background fetches triggered by session changes and Notify
func WithTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a synchronizer. Call Start to begin tracking the session.
func New(sess SessionSource, fetch FetchFunc, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		sess:      sess,
		fetch:     fetch,
		logger:    slog.Default(),
		timeout:   10 * time.Second,
		listeners: make(map[int]func(Counts)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start performs the initial fetch and follows session transitions until Close
func (s *Synchronizer) Start(ctx context.Context) {
	s.baseCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.unsubscribe = s.sess.Subscribe(s.onSession)
	_ = s.Refetch(ctx)
}

// Close stops following the session and waits for background fetches
func (s *Synchronizer) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.wg.Wait()
	if s.cancel != nil {
		s.cancel()
	}
}

// Counts returns the latest known counts
func (s *Synchronizer) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts
}

// Subscribe registers fn for every count change and returns its cancel func
func (s *Synchronizer) Subscribe(fn func(Counts)) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.listeners, id)
		s.subMu.Unlock()
	}
}

// Refetch loads the counts for the current identity. Signed out, the counts are
// forced to zero without a request. On failure the previous counts are kept and
// the error is logged and returned for callers that care.
func (s *Synchronizer) Refetch(ctx context.Context) error {
	snap := s.sess.Snapshot()
	identity := identityOf(snap)
	gen := s.observe(identity)

	if identity == "" {
		return nil
	}

	res, err, shared := s.group.Do(identity, func() (any, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		s.logger.Warn("failed to refresh cart counts, keeping previous values", "error", err)
		return err
	}
	if shared {
		s.logger.Debug("cart count fetch coalesced")
	}

	s.apply(gen, identity, res.(Counts))
	return nil
}

// Notify schedules a background refetch; mutations call it after they succeed
func (s *Synchronizer) Notify() {
	s.goRefetch()
}

func (s *Synchronizer) onSession(snap session.Snapshot) {
	identity := identityOf(snap)

	s.mu.RLock()
	changed := identity != s.identity
	s.mu.RUnlock()
	if !changed {
		return
	}

	s.observe(identity)
	if identity != "" {
		s.goRefetch()
	}
}

func (s *Synchronizer) goRefetch() {
	base := s.baseCtx
	if base == nil {
		base = context.Background()
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(base, s.timeout)
		defer cancel()
		_ = s.Refetch(ctx)
	}()
}

// observe records identity and returns the generation a fetch result must match.
// A change of identity bumps the generation so late responses are dropped, and
// signing out resets the counts.
func (s *Synchronizer) observe(identity string) uint64 {
	s.mu.Lock()
	if identity == s.identity {
		gen := s.generation
		s.mu.Unlock()
		return gen
	}
	s.identity = identity
	s.generation++
	gen := s.generation

	var reset bool
	if identity == "" && s.counts != (Counts{}) {
		s.counts = Counts{}
		reset = true
	}
	counts := s.counts
	s.mu.Unlock()

	if reset {
		s.broadcast(counts)
	}
	return gen
}

// apply stores c unless the session moved on while the fetch was in flight
func (s *Synchronizer) apply(gen uint64, identity string, c Counts) {
	if c.Cart < 0 {
		c.Cart = 0
	}
	if c.Wishlist < 0 {
		c.Wishlist = 0
	}
	current := identityOf(s.sess.Snapshot())

	s.mu.Lock()
	if gen != s.generation || current != identity {
		s.mu.Unlock()
		s.logger.Debug("dropping counts for a previous session")
		return
	}
	changed := s.counts != c
	s.counts = c
	s.mu.Unlock()

	if changed {
		s.broadcast(c)
	}
}

func (s *Synchronizer) broadcast(c Counts) {
	s.subMu.Lock()
	listeners := make([]func(Counts), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
}

func identityOf(snap session.Snapshot) string {
	if !snap.IsAuthenticated() {
		return ""
	}
	return snap.UserID() + "|" + snap.AccessToken
}
