package assets

import (
	"context"
	"log/slog"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/metrics"
)

// Loader owns the public site's stylesheets and scripts.
type Loader struct {
	Styles  *StyleSet
	Scripts *ScriptQueue
}

func NewLoader(m Manifest, source Source, log *slog.Logger, met *metrics.Metrics) *Loader {
	log = log.With("component", "assets")
	return &Loader{
		Styles:  NewStyleSet(m.Stylesheets, source, log, met),
		Scripts: NewScriptQueue(m.Scripts, source, log, met),
	}
}

func (l *Loader) Start(ctx context.Context) {
	l.Styles.Start(ctx)
	l.Scripts.Start(ctx)
}

// Ready gates public pages: content is shown once every stylesheet has signalled.
func (l *Loader) Ready() bool {
	return l.Styles.Ready()
}

// Close drops every loaded asset and waits for fetches still in flight until
// ctx ends.
func (l *Loader) Close(ctx context.Context) error {
	l.Styles.Close()
	l.Scripts.Close()

	drained := make(chan struct{})
	go func() {
		l.Styles.Drain()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		return ctx.Err()
	}
	return l.Scripts.Wait(ctx)
}
