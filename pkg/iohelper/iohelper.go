// Package iohelper provides helpers for safely reading HTTP response bodies
// with size limits.
package iohelper

import (
	"io"
)

// Body size limits for different use cases.
const (
	// SmallMaxBodySize is for error pages and status responses (8KB).
	SmallMaxBodySize int64 = 8 * 1024

	// DefaultMaxBodySize is for general API responses (1MB). Dradis issue
	// lists with large evidence fields stay well under this.
	DefaultMaxBodySize int64 = 1024 * 1024
)

// ReadBody reads from r with a size limit. A nil reader returns an empty
// slice. The limit prevents memory exhaustion from oversized responses.
func ReadBody(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadBodyDefault reads from r with the default 1MB limit.
func ReadBodyDefault(r io.Reader) ([]byte, error) {
	return ReadBody(r, DefaultMaxBodySize)
}

// DrainAndClose drains remaining bytes (so the connection can be reused by
// the pool) and closes the body. Safe on nil.
func DrainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, SmallMaxBodySize))
	_ = body.Close()
}
