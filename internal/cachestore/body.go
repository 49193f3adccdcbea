package cachestore

import (
	"bytes"
	"io"
)

func newBodyReader(b []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(b))
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func cloneEntry(e Entry) Entry {
	e.Header = e.Header.Clone()
	e.Body = cloneBytes(e.Body)
	return e
}
