package cachestore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Driver identifies a cache backend.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverFS     Driver = "fs"
	DriverSQLite Driver = "sqlite"
)

var (
	// ErrNotFound is returned when a generation does not exist.
	ErrNotFound = errors.New("cache generation not found")
	// ErrUnknownDriver is returned by Open for an unrecognized driver name.
	ErrUnknownDriver = errors.New("unknown cache driver")
	// ErrInvalidName rejects generation names that cannot be stored safely.
	ErrInvalidName = errors.New("invalid cache generation name")
)

// Entry is one stored response.
type Entry struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header,omitempty"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"stored_at"`
}

// Response rebuilds an *http.Response for req from the entry. Each call gets
// its own body reader.
func (e Entry) Response(req *http.Request) *http.Response {
	header := e.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	status := e.Status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          newBodyReader(e.Body),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

// Cache is one named generation of stored responses. Writes to the same key
// are last-writer-wins.
type Cache interface {
	Put(ctx context.Context, key string, entry Entry) error
	Match(ctx context.Context, key string) (Entry, bool, error)
	Keys(ctx context.Context) ([]string, error)
}

// Store manages named generations.
type Store interface {
	// Open returns the generation called name, creating it when missing.
	Open(ctx context.Context, name string) (Cache, error)
	// Keys lists generation names in sorted order.
	Keys(ctx context.Context) ([]string, error)
	// Delete removes a generation and reports whether it existed.
	Delete(ctx context.Context, name string) (bool, error)
	// Match searches every generation for key.
	Match(ctx context.Context, key string) (Entry, bool, error)
	Driver() Driver
	Close() error
}

// Options select and configure a driver.
type Options struct {
	Driver   Driver
	Path     string
	Capacity int
}

// Open selects a Store implementation by driver name.
//
//	memory: otter-backed, process lifetime (default)
//	fs:     one directory per generation under Path
//	sqlite: single database file at Path
func Open(ctx context.Context, opts Options) (Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverMemory
	}
	switch driver {
	case DriverMemory:
		return NewMemory(opts.Capacity), nil
	case DriverFS:
		return NewFilesystem(opts.Path)
	case DriverSQLite:
		return NewSQLite(ctx, opts.Path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

// Key canonicalizes a request URL into a cache key. The method is not part
// of the key; only GET responses are ever stored.
func Key(u *url.URL) string {
	if u == nil {
		return ""
	}
	k := url.URL{
		Scheme:   strings.ToLower(u.Scheme),
		Host:     strings.ToLower(u.Host),
		Path:     u.Path,
		RawPath:  u.RawPath,
		RawQuery: u.RawQuery,
	}
	if k.Path == "" {
		k.Path = "/"
	}
	return k.String()
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
