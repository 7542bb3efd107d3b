package assets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeSource serves fixed content, fails listed refs, and can hold fetches until
// released.
type fakeSource struct {
	mu       sync.Mutex
	order    []string
	fail     map[string]bool
	gate     chan struct{}
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	f.order = append(f.order, ref)
	f.mu.Unlock()

	if f.fail[ref] {
		return nil, errors.New("unreachable")
	}
	return []byte("content:" + ref), nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestStyleSet_ReadyOnlyAfterEverySignal(t *testing.T) {
	src := &fakeSource{gate: make(chan struct{}), fail: map[string]bool{"b.css": true}}
	set := NewStyleSet([]string{"a.css", "b.css", "c.css"}, src, discard, nil)

	set.Start(context.Background())
	waitFor(t, func() bool { return src.inFlight.Load() == 3 })
	assert.False(t, set.Ready())

	close(src.gate)
	waitFor(t, set.Ready)
	set.Drain()

	assert.Equal(t, int32(3), src.maxSeen.Load())
	bundle := string(set.Bundle())
	assert.Contains(t, bundle, "content:a.css")
	assert.NotContains(t, bundle, "content:b.css")
	assert.Less(t, strings.Index(bundle, "content:a.css"), strings.Index(bundle, "content:c.css"))
}

func TestStyleSet_EmptyIsReady(t *testing.T) {
	set := NewStyleSet(nil, &fakeSource{}, discard, nil)
	assert.True(t, set.Ready())
}

func TestStyleSet_CloseDropsAssets(t *testing.T) {
	src := &fakeSource{}
	set := NewStyleSet([]string{"a.css"}, src, discard, nil)
	set.Start(context.Background())
	waitFor(t, set.Ready)

	set.Close()

	assert.False(t, set.Ready())
	assert.Empty(t, set.Bundle())

	set.Start(context.Background())
	assert.Len(t, src.order, 1)
}

func TestStyleSet_CloseDoesNotCancelInFlight(t *testing.T) {
	src := &fakeSource{gate: make(chan struct{})}
	set := NewStyleSet([]string{"a.css"}, src, discard, nil)
	set.Start(context.Background())
	waitFor(t, func() bool { return src.inFlight.Load() == 1 })

	set.Close()
	close(src.gate)
	set.Drain()

	assert.Equal(t, []string{"a.css"}, src.order)
	assert.Empty(t, set.Bundle())
}

func TestScriptQueue_SequentialInOrderSkippingFailures(t *testing.T) {
	refs := []string{"jquery.min.js", "swup.min.js", "swiper.min.js", "gsap.min.js"}
	src := &fakeSource{fail: map[string]bool{"swup.min.js": true}}
	queue := NewScriptQueue(refs, src, discard, nil)

	queue.Start(context.Background())
	require.NoError(t, queue.Wait(context.Background()))

	assert.Equal(t, refs, src.order)
	assert.Equal(t, int32(1), src.maxSeen.Load())
	assert.Equal(t, []string{"jquery.min.js", "swiper.min.js", "gsap.min.js", "init"}, queue.Loaded())
	assert.Equal(t, []string{"swup.min.js"}, queue.Failed())

	bundle := string(queue.Bundle())
	assert.Less(t, strings.Index(bundle, "content:jquery.min.js"), strings.Index(bundle, "content:gsap.min.js"))
	assert.Contains(t, bundle, "registerPlugin")
}

func TestScriptQueue_CloseStopsNewTasks(t *testing.T) {
	src := &fakeSource{gate: make(chan struct{})}
	queue := NewScriptQueue([]string{"one.js", "two.js", "three.js"}, src, discard, nil)

	queue.Start(context.Background())
	waitFor(t, func() bool { return src.inFlight.Load() == 1 })

	queue.Close()
	close(src.gate)
	require.NoError(t, queue.Wait(context.Background()))

	assert.Equal(t, []string{"one.js"}, src.order)
	assert.Empty(t, queue.Loaded())
	assert.Empty(t, queue.Bundle())
}

func TestLoader_ReadyFollowsStyles(t *testing.T) {
	src := &fakeSource{}
	loader := NewLoader(Manifest{Stylesheets: []string{"a.css"}, Scripts: []string{"a.js"}}, src, discard, nil)

	loader.Start(context.Background())
	waitFor(t, loader.Ready)
	require.NoError(t, loader.Scripts.Wait(context.Background()))

	require.NoError(t, loader.Close(context.Background()))
	assert.False(t, loader.Ready())
}

func TestLoader_CloseWaitsForInFlightFetches(t *testing.T) {
	src := &fakeSource{gate: make(chan struct{})}
	loader := NewLoader(Manifest{Stylesheets: []string{"a.css"}, Scripts: []string{"a.js", "b.js"}}, src, discard, nil)

	loader.Start(context.Background())
	waitFor(t, func() bool { return src.inFlight.Load() == 2 })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, loader.Close(ctx), context.DeadlineExceeded)

	close(src.gate)
	require.NoError(t, loader.Close(context.Background()))
	assert.ElementsMatch(t, []string{"a.css", "a.js"}, src.order)
	assert.Empty(t, loader.Scripts.Loaded())
}

func TestLoader_CloseBeforeStart(t *testing.T) {
	loader := NewLoader(Manifest{Stylesheets: []string{"a.css"}, Scripts: []string{"a.js"}}, &fakeSource{}, discard, nil)
	require.NoError(t, loader.Close(context.Background()))
}

func TestDirSource(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "css", "style.css"), []byte("body{}"), 0o644))

	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.css" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(".fa{}"))
	}))
	t.Cleanup(remote.Close)

	src, err := NewDirSource(root, remote.Client(), time.Second)
	require.NoError(t, err)

	data, err := src.Fetch(context.Background(), "css/style.css")
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(data))

	data, err = src.Fetch(context.Background(), remote.URL+"/all.min.css")
	require.NoError(t, err)
	assert.Equal(t, ".fa{}", string(data))

	_, err = src.Fetch(context.Background(), remote.URL+"/missing.css")
	assert.Error(t, err)

	_, err = src.Fetch(context.Background(), "../secrets.css")
	assert.Error(t, err)

	_, err = src.Fetch(context.Background(), "css/\nstyle.css")
	assert.Error(t, err)
}

func TestDirSource_OversizedRemoteAssetFails(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", maxAssetBytes+1)))
	}))
	t.Cleanup(remote.Close)

	src, err := NewDirSource(t.TempDir(), remote.Client(), 5*time.Second)
	require.NoError(t, err)

	data, err := src.Fetch(context.Background(), remote.URL+"/huge.css")
	assert.ErrorIs(t, err, ErrAssetTooLarge)
	assert.Nil(t, data)
}

func TestLoadManifest(t *testing.T) {
	m, err := LoadManifest("")
	require.NoError(t, err)
	assert.Contains(t, m.Scripts[0], "jquery")
	assert.Len(t, m.Scripts, 8)
	assert.Len(t, m.Stylesheets, 5)

	path := filepath.Join(t.TempDir(), "assets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stylesheets:\n  - css/a.css\nscripts:\n  - js/a.js\n  - js/b.js\n"), 0o644))

	m, err = LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"css/a.css"}, m.Stylesheets)
	assert.Equal(t, []string{"js/a.js", "js/b.js"}, m.Scripts)

	_, err = LoadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
