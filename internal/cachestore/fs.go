package cachestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const entrySuffix = ".json"

type fsStore struct {
	fs   *afero.Afero
	root string
}

type fsCache struct {
	fs  *afero.Afero
	dir string
}

// fsRecord is the on-disk form of one entry.
type fsRecord struct {
	Key   string `json:"key"`
	Entry Entry  `json:"entry"`
}

// NewFilesystem returns a Store rooted at dir on the OS filesystem.
func NewFilesystem(dir string) (Store, error) {
	return NewFilesystemFs(afero.NewOsFs(), dir)
}

// NewFilesystemFs returns a Store rooted at dir on fs.
func NewFilesystemFs(fs afero.Fs, dir string) (Store, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "cachedata"
	}
	a := &afero.Afero{Fs: fs}
	if err := a.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache root: %w", err)
	}
	return &fsStore{fs: a, root: dir}, nil
}

func (s *fsStore) Driver() Driver { return DriverFS }

func (s *fsStore) Close() error { return nil }

func (s *fsStore) Open(_ context.Context, name string) (Cache, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, name)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create generation %s: %w", name, err)
	}
	return &fsCache{fs: s.fs, dir: dir}, nil
}

func (s *fsStore) Keys(context.Context) ([]string, error) {
	infos, err := s.fs.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	var names []string
	for _, info := range infos {
		if info.IsDir() {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *fsStore) Delete(_ context.Context, name string) (bool, error) {
	if err := validName(name); err != nil {
		return false, err
	}
	dir := filepath.Join(s.root, name)
	exists, err := s.fs.DirExists(dir)
	if err != nil {
		return false, fmt.Errorf("stat generation %s: %w", name, err)
	}
	if !exists {
		return false, nil
	}
	if err := s.fs.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("remove generation %s: %w", name, err)
	}
	return true, nil
}

func (s *fsStore) Match(ctx context.Context, key string) (Entry, bool, error) {
	names, err := s.Keys(ctx)
	if err != nil {
		return Entry{}, false, err
	}
	for _, name := range names {
		c := &fsCache{fs: s.fs, dir: filepath.Join(s.root, name)}
		e, ok, err := c.Match(ctx, key)
		if err != nil {
			return Entry{}, false, err
		}
		if ok {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

func (c *fsCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+entrySuffix)
}

func (c *fsCache) Put(_ context.Context, key string, entry Entry) error {
	raw, err := json.Marshal(fsRecord{Key: key, Entry: entry})
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	target := c.path(key)
	tmp, err := c.fs.TempFile(c.dir, ".put-*")
	if err != nil {
		return fmt.Errorf("create temp entry: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = c.fs.Remove(tmpName)
		return fmt.Errorf("write entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = c.fs.Remove(tmpName)
		return fmt.Errorf("close entry: %w", err)
	}
	if err := c.fs.Rename(tmpName, target); err != nil {
		_ = c.fs.Remove(tmpName)
		return fmt.Errorf("commit entry: %w", err)
	}
	return nil
}

func (c *fsCache) Match(_ context.Context, key string) (Entry, bool, error) {
	raw, err := c.fs.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("read entry: %w", err)
	}
	var rec fsRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Entry{}, false, fmt.Errorf("decode entry: %w", err)
	}
	if rec.Key != key {
		return Entry{}, false, nil
	}
	return rec.Entry, true, nil
}

func (c *fsCache) Keys(context.Context) ([]string, error) {
	infos, err := c.fs.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list entries: %w", err)
	}
	var keys []string
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), entrySuffix) {
			continue
		}
		raw, err := c.fs.ReadFile(filepath.Join(c.dir, info.Name()))
		if err != nil {
			continue
		}
		var rec fsRecord
		if json.Unmarshal(raw, &rec) == nil {
			keys = append(keys, rec.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
