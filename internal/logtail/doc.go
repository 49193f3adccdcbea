// Package logtail reads the tail of the client log for the logs view.
//
// # Overview
//
// The TUI writes slog text records to a file so the terminal stays clean.
// The logs view reads the last few hundred lines back and renders them
// with per-level styling.
//
// # Reading Log Files
//
// Read uses a ring buffer of size maxLines:
//
//   - Scans the file sequentially (one pass)
//   - Uses O(maxLines) memory, not O(file size)
//   - Returns lines in chronological order
//
// Files are opened through an afero.Fs so tests can use an in-memory
// filesystem.
//
//	lines, err := logtail.Read(afero.NewOsFs(), cfg.LogFile, 400)
//
// # Parsing
//
// Parse splits a slog text-handler line (time=... level=... msg=...) into
// an Entry. Quoted values are unquoted. Lines that are not key=value
// records, such as panic traces, are kept as free text at INFO so nothing
// disappears from the view. Filter drops entries below a level.
package logtail
