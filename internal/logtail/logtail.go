package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields nothing.
func Read(fsys afero.Fs, path string, maxLines int) ([]string, error) {
	file, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var all []string
		for scanner.Scan() {
			all = append(all, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return all, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one slog text-handler line split into its fields.
type Entry struct {
	Raw   string
	Time  string
	Level slog.Level
	Msg   string
	Attrs []Attr
}

// Attr is a key=value pair following msg.
type Attr struct {
	Key   string
	Value string
}

// Parse splits a slog text line. Lines that are not key=value records come
// back with only Raw and Msg set and level INFO.
func Parse(line string) Entry {
	entry := Entry{Raw: line, Level: slog.LevelInfo}
	pairs, ok := splitPairs(line)
	if !ok {
		entry.Msg = line
		return entry
	}
	for _, p := range pairs {
		switch p.Key {
		case "time":
			entry.Time = p.Value
		case "level":
			var lvl slog.Level
			if err := lvl.UnmarshalText([]byte(p.Value)); err == nil {
				entry.Level = lvl
			}
		case "msg":
			entry.Msg = p.Value
		default:
			entry.Attrs = append(entry.Attrs, p)
		}
	}
	return entry
}

// Filter keeps entries at or above min.
func Filter(entries []Entry, min slog.Level) []Entry {
	out := entries[:0:0]
	for _, e := range entries {
		if e.Level >= min {
			out = append(out, e)
		}
	}
	return out
}

// ParseAll parses every line.
func ParseAll(lines []string) []Entry {
	out := make([]Entry, 0, len(lines))
	for _, l := range lines {
		out = append(out, Parse(l))
	}
	return out
}

func splitPairs(line string) ([]Attr, bool) {
	var pairs []Attr
	rest := strings.TrimSpace(line)
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 || strings.ContainsAny(rest[:eq], " \"") {
			return nil, false
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, "\"") {
			quoted, err := strconv.QuotedPrefix(rest)
			if err != nil {
				return nil, false
			}
			value, _ = strconv.Unquote(quoted)
			rest = rest[len(quoted):]
		} else {
			end := strings.IndexByte(rest, ' ')
			if end < 0 {
				end = len(rest)
			}
			value = rest[:end]
			rest = rest[end:]
		}
		pairs = append(pairs, Attr{Key: key, Value: value})
		rest = strings.TrimLeft(rest, " ")
	}
	return pairs, len(pairs) > 0
}
