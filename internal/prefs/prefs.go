// Package prefs persists solo user preferences in
// ~/.config/solo/prefs.toml.
package prefs

import (
	"fmt"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/subhaanfazeel/solo/internal/config"
	"github.com/subhaanfazeel/solo/internal/state"
)

// Prefs holds user preferences that survive restarts.
type Prefs struct {
	Theme    string `toml:"theme"`
	LastView string `toml:"last_view"`
}

const (
	defaultPrefsPath = "~/.config/solo/prefs.toml"
	defaultTheme     = "Monarch"
)

// Default returns the preferences used when nothing is stored.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, LastView: string(state.ViewMain)}
}

// View returns the remembered view, falling back to main.
func (p Prefs) View() state.View {
	return state.ParseView(p.LastView)
}

// Load reads preferences from path on the OS filesystem.
func Load(path string) (Prefs, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// Save writes preferences to path on the OS filesystem.
func Save(path string, p Prefs) error {
	return SaveFs(afero.NewOsFs(), path, p)
}

// LoadFs reads preferences from path in fsys. Missing, unreadable or
// malformed files yield defaults; preferences never block startup.
func LoadFs(fsys afero.Fs, path string) (Prefs, error) {
	resolved, err := resolve(path)
	if err != nil {
		return Default(), nil
	}
	raw, err := afero.ReadFile(fsys, resolved)
	if err != nil {
		return Default(), nil
	}

	p := Default()
	if err := toml.Unmarshal(raw, &p); err != nil {
		return Default(), nil
	}
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.LastView = string(p.View())
	return p, nil
}

// SaveFs writes p to a temp file next to path and renames it into place, so
// a crash mid-write leaves the previous file intact.
func SaveFs(fsys afero.Fs, path string, p Prefs) error {
	resolved, err := resolve(path)
	if err != nil {
		return fmt.Errorf("resolve prefs path: %w", err)
	}
	dir := filepath.Dir(resolved)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	raw, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp, err := afero.TempFile(fsys, dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("create temp prefs: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpName)
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpName)
		return fmt.Errorf("close prefs: %w", err)
	}
	if err := fsys.Rename(tmpName, resolved); err != nil {
		_ = fsys.Remove(tmpName)
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

func resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	return config.ExpandPath(path)
}
