package assets

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Manifest lists the public site's stylesheets and scripts in load order. Entries
// are paths under the static directory or absolute http(s) URLs.
type Manifest struct {
	Stylesheets []string `yaml:"stylesheets" json:"stylesheets"`
	Scripts     []string `yaml:"scripts" json:"scripts"`
}

// DefaultManifest matches configs/assets.yaml. jQuery loads before the plugins
// that depend on it.
func DefaultManifest() Manifest {
	return Manifest{
		Stylesheets: []string{
			"https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap-grid.min.css",
			"https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.1/css/all.min.css",
			"https://cdn.jsdelivr.net/npm/swiper@11/swiper-bundle.min.css",
			"https://cdn.jsdelivr.net/npm/@fancyapps/ui@5.0/dist/fancybox/fancybox.css",
			"css/style.css",
		},
		Scripts: []string{
			"https://cdn.jsdelivr.net/npm/jquery@3.7.1/dist/jquery.min.js",
			"https://cdn.jsdelivr.net/npm/swup@4/dist/Swup.umd.min.js",
			"https://cdn.jsdelivr.net/npm/swiper@11/swiper-bundle.min.js",
			"https://cdn.jsdelivr.net/npm/@fancyapps/ui@5.0/dist/fancybox/fancybox.umd.js",
			"https://cdn.jsdelivr.net/npm/gsap@3.12.5/dist/gsap.min.js",
			"https://cdn.jsdelivr.net/npm/smooth-scroll@16.1.3/dist/smooth-scroll.polyfills.min.js",
			"https://cdn.jsdelivr.net/npm/gsap@3.12.5/dist/ScrollTrigger.min.js",
			"https://cdn.jsdelivr.net/npm/gsap@3.12.5/dist/ScrollToPlugin.min.js",
		},
	}
}

// LoadManifest reads a YAML or JSON manifest. An empty path yields DefaultManifest.
func LoadManifest(path string) (Manifest, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultManifest(), nil
	}

	var m Manifest
	if err := cleanenv.ReadConfig(path, &m); err != nil {
		return Manifest{}, fmt.Errorf("read asset manifest %s: %w", path, err)
	}

	if len(m.Stylesheets) == 0 && len(m.Scripts) == 0 {
		return Manifest{}, fmt.Errorf("asset manifest %s lists no assets", path)
	}

	return m, nil
}
