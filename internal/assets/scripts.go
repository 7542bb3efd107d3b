package assets

import (
	"bytes"
	"context"
	_ "embed"
	"log/slog"
	"sync"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/metrics"
)

//go:embed init.js
var initRoutine []byte

type loadedScript struct {
	ref  string
	data []byte
}

// ScriptQueue loads scripts one at a time in manifest order. A failed script is
// logged and skipped. The site init routine is appended after the last task.
type ScriptQueue struct {
	refs    []string
	source  Source
	log     *slog.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	started bool
	closed  bool
	loaded  []loadedScript
	failed  []string
	done    chan struct{}
}

func NewScriptQueue(refs []string, source Source, log *slog.Logger, m *metrics.Metrics) *ScriptQueue {
	return &ScriptQueue{
		refs:    append([]string(nil), refs...),
		source:  source,
		log:     log,
		metrics: m,
		done:    make(chan struct{}),
	}
}

func (q *ScriptQueue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.started || q.closed {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	go q.run(ctx)
}

func (q *ScriptQueue) run(ctx context.Context) {
	defer close(q.done)

	for _, ref := range q.refs {
		if q.isClosed() {
			return
		}

		data, err := q.source.Fetch(ctx, ref)
		q.metrics.ObserveAsset("script", err == nil)

		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return
		}
		if err != nil {
			q.failed = append(q.failed, ref)
			q.log.Warn("script failed to load; continuing", "src", ref, "error", err)
		} else {
			q.loaded = append(q.loaded, loadedScript{ref: ref, data: data})
		}
		q.mu.Unlock()
	}

	q.mu.Lock()
	if !q.closed {
		q.loaded = append(q.loaded, loadedScript{ref: "init", data: initRoutine})
	}
	q.mu.Unlock()
	q.log.Info("scripts loaded", "loaded", len(q.refs)-len(q.Failed()), "failed", len(q.Failed()))
}

func (q *ScriptQueue) isClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Done reports whether the queue has run every task.
func (q *ScriptQueue) Done() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the queue has run every task or ctx ends. A queue that was
// never started has nothing to wait for.
func (q *ScriptQueue) Wait(ctx context.Context) error {
	q.mu.RLock()
	started := q.started
	q.mu.RUnlock()
	if !started {
		return nil
	}

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Loaded returns the refs that loaded, in execution order, init included.
func (q *ScriptQueue) Loaded() []string {
	q.mu.RLock()
	defer q.mu.RUnlock()

	refs := make([]string, 0, len(q.loaded))
	for _, s := range q.loaded {
		refs = append(refs, s.ref)
	}
	return refs
}

func (q *ScriptQueue) Failed() []string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return append([]string(nil), q.failed...)
}

// Bundle joins the loaded scripts in execution order.
func (q *ScriptQueue) Bundle() []byte {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var buf bytes.Buffer
	for _, s := range q.loaded {
		buf.WriteString("/* " + s.ref + " */\n")
		buf.Write(s.data)
		buf.WriteString("\n;\n")
	}
	return buf.Bytes()
}

// Close stops the queue before its next task and drops loaded scripts.
func (q *ScriptQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.loaded = nil
}
