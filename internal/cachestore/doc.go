// Package cachestore stores cached HTTP responses in named generations.
//
// A generation corresponds to one asset-manifest version. The caching agent
// opens the current generation, writes responses into it, and on activation
// deletes the generations it no longer wants. Drivers:
//
//   - memory: otter caches, one per generation, bounded by capacity
//   - fs: afero filesystem, one directory per generation, one JSON file per
//     entry named by the sha256 of its key
//   - sqlite: modernc.org/sqlite tables for generations and entries
//
// All drivers are last-writer-wins per key. Store.Match searches every
// generation in name order, the way a browser's caches.match does.
package cachestore
