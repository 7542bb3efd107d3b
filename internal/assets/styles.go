package assets

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/metrics"
)

// StyleSet fetches every stylesheet concurrently. It becomes ready once each one
// has signalled, whether it loaded or failed.
type StyleSet struct {
	refs    []string
	source  Source
	log     *slog.Logger
	metrics *metrics.Metrics

	mu        sync.RWMutex
	started   bool
	closed    bool
	signalled int
	loaded    map[int][]byte
	ready     chan struct{}
	group     errgroup.Group
}

func NewStyleSet(refs []string, source Source, log *slog.Logger, m *metrics.Metrics) *StyleSet {
	s := &StyleSet{
		refs:    append([]string(nil), refs...),
		source:  source,
		log:     log,
		metrics: m,
		loaded:  make(map[int][]byte, len(refs)),
		ready:   make(chan struct{}),
	}
	if len(refs) == 0 {
		close(s.ready)
	}
	return s
}

// Start launches one load task per stylesheet. Calls after the first, or after
// Close, do nothing.
func (s *StyleSet) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	for i, ref := range s.refs {
		s.group.Go(func() error {
			data, err := s.source.Fetch(ctx, ref)
			s.signal(i, ref, data, err)
			return nil
		})
	}
}

func (s *StyleSet) signal(i int, ref string, data []byte, err error) {
	s.metrics.ObserveAsset("stylesheet", err == nil)
	if err != nil {
		s.log.Warn("stylesheet failed to load", "href", ref, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if err == nil {
		s.loaded[i] = data
	}

	s.signalled++
	if s.signalled == len(s.refs) {
		close(s.ready)
		s.log.Info("stylesheets ready", "loaded", len(s.loaded), "total", len(s.refs))
	}
}

// Ready reports whether every stylesheet has signalled.
func (s *StyleSet) Ready() bool {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return false
	}

	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// Bundle concatenates the loaded stylesheets in manifest order.
func (s *StyleSet) Bundle() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buf bytes.Buffer
	for i, ref := range s.refs {
		data, ok := s.loaded[i]
		if !ok {
			continue
		}
		buf.WriteString("/* " + ref + " */\n")
		buf.Write(data)
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// Drain blocks until every started fetch has returned.
func (s *StyleSet) Drain() {
	_ = s.group.Wait()
}

// Close stops accepting results and drops loaded stylesheets. Fetches already in
// flight run to completion and are discarded.
func (s *StyleSet) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.loaded = map[int][]byte{}
}
