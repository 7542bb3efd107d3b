package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const maxAssetBytes = 8 << 20

// ErrAssetTooLarge is returned for stylesheets and scripts over maxAssetBytes.
var ErrAssetTooLarge = errors.New("asset too large")

// Source fetches the content of one manifest entry.
type Source interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// DirSource reads relative entries from a static directory and fetches absolute
// URLs over HTTP.
type DirSource struct {
	rootAbs string
	client  *http.Client
	timeout time.Duration
}

func NewDirSource(root string, client *http.Client, timeout time.Duration) (*DirSource, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("static dir cannot be empty")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve static dir: %w", err)
	}

	if client == nil {
		client = http.DefaultClient
	}

	return &DirSource{rootAbs: rootAbs, client: client, timeout: timeout}, nil
}

func (s *DirSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if isRemote(ref) {
		return s.fetchRemote(ctx, ref)
	}

	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return data, nil
}

func (s *DirSource) fetchRemote(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", ref, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", ref, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	if len(data) > maxAssetBytes {
		return nil, fmt.Errorf("fetch %s: %w", ref, ErrAssetTooLarge)
	}
	return data, nil
}

// resolve maps a manifest path into the static directory, refusing anything that
// would escape it.
func (s *DirSource) resolve(ref string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(ref), `\`, "/")
	if normalized == "" {
		return "", fmt.Errorf("empty asset path")
	}

	for _, char := range normalized {
		if unicode.IsControl(char) {
			return "", fmt.Errorf("asset path %q contains invalid characters", ref)
		}
	}

	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", fmt.Errorf("asset path %q escapes the static dir", ref)
		}
	}

	resolved := filepath.Join(s.rootAbs, filepath.Clean(strings.TrimPrefix(normalized, "/")))
	if resolved != s.rootAbs && !strings.HasPrefix(resolved, s.rootAbs+string(filepath.Separator)) {
		return "", fmt.Errorf("asset path %q escapes the static dir", ref)
	}

	return resolved, nil
}

func isRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
