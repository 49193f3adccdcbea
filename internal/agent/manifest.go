package agent

import (
	"net/url"
	"strings"
)

const (
	defaultPrefix  = "solo-cache"
	defaultVersion = "v11.7"
)

// Asset is one app-shell URL. Versioned assets carry the version token as
// their query string so a new version never reuses a stale HTTP cache entry.
type Asset struct {
	Path      string
	Versioned bool
}

// Manifest is the versioned list of app-shell assets. The version token
// names the cache generation.
type Manifest struct {
	Prefix  string
	Version string
	Assets  []Asset
}

// DefaultManifest returns the built-in app shell.
func DefaultManifest() Manifest {
	return Manifest{
		Prefix:  defaultPrefix,
		Version: defaultVersion,
		Assets: []Asset{
			{Path: "/"},
			{Path: "/static/index.html", Versioned: true},
			{Path: "/static/styles.css", Versioned: true},
			{Path: "/static/app.js", Versioned: true},
			{Path: "/static/sw-register.js", Versioned: true},
			{Path: "/static/manifest.json"},
			{Path: "/static/icon-192.svg"},
			{Path: "/static/icon-512.svg"},
		},
	}
}

// NewManifest builds a manifest from configuration values. Empty fields fall
// back to the defaults. An asset path ending in "?v" is versioned.
func NewManifest(prefix, version string, assets []string) Manifest {
	m := DefaultManifest()
	if p := strings.TrimSpace(prefix); p != "" {
		m.Prefix = p
	}
	if v := strings.TrimSpace(version); v != "" {
		m.Version = v
	}
	if len(assets) > 0 {
		m.Assets = m.Assets[:0:0]
		for _, raw := range assets {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			versioned := strings.HasSuffix(raw, "?v")
			m.Assets = append(m.Assets, Asset{Path: strings.TrimSuffix(raw, "?v"), Versioned: versioned})
		}
	}
	return m
}

// CacheName is the generation identifier, e.g. "solo-cache-v11.7".
func (m Manifest) CacheName() string {
	return m.Prefix + "-" + m.Version
}

// Paths returns every asset path with its version query applied.
func (m Manifest) Paths() []string {
	out := make([]string, 0, len(m.Assets))
	for _, a := range m.Assets {
		p := a.Path
		if a.Versioned {
			p += "?" + m.Version
		}
		out = append(out, p)
	}
	return out
}

// URLs resolves Paths against origin.
func (m Manifest) URLs(origin *url.URL) []*url.URL {
	paths := m.Paths()
	out := make([]*url.URL, 0, len(paths))
	for _, p := range paths {
		rel, err := url.Parse(p)
		if err != nil {
			continue
		}
		if origin == nil {
			out = append(out, rel)
			continue
		}
		out = append(out, origin.ResolveReference(rel))
	}
	return out
}
