// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc

import (
	"errors"
	"io"

	"github.com/valyala/bytebufferpool"
)

// ErrTooLarge is returned by [ReadLimited] when the reader yields more than the
// allowed number of bytes.
var ErrTooLarge = errors.New("payload exceeds size limit")

// Buffer defines the interface for a reusable byte buffer.
// It abstracts the [bytebufferpool.ByteBuffer] type to avoid direct dependencies.
type Buffer interface {
	io.Writer
	io.ReaderFrom
	io.WriterTo
	WriteString(s string) (int, error)
	WriteByte(c byte) error
	Bytes() []byte
	String() string
	Len() int
	Reset()
}

// Pool defines the interface for buffer pooling.
// It abstracts the [bytebufferpool.Pool] type to avoid direct dependencies.
//
// Pool implementations must be safe for concurrent use by multiple goroutines.
type Pool interface {
	Get() Buffer
	Put(b Buffer)
}

// pool wraps [bytebufferpool.Pool] to implement Pool interface.
type pool struct{ p *bytebufferpool.Pool }

// Get returns a buffer from the pool.
func (p *pool) Get() Buffer { return p.p.Get() }

// Put resets the buffer and returns it to the pool. Buffers that were not
// obtained from a bytebufferpool are dropped.
func (p *pool) Put(b Buffer) {
	if buf, ok := b.(*bytebufferpool.ByteBuffer); ok {
		buf.Reset()
		p.p.Put(buf)
	}
}

// Default is the default buffer pool shared by the codec, the HTTP transport
// and the JSON logger.
//
// Example usage:
//
//	buf := gc.Default.Get()
//	defer gc.Default.Put(buf)
//
//	if _, err := buf.ReadFrom(r.Body); err != nil {
//		return fmt.Errorf("error reading request body: %w", err)
//	}
var Default Pool = &pool{p: &bytebufferpool.Pool{}}

// ReadLimited reads r into a freshly allocated slice using a pooled buffer as
// scratch space. It returns [ErrTooLarge] when r holds more than limit bytes.
// A limit of zero or less disables the check.
//
// The returned slice does not alias pooled memory and stays valid after the
// call returns.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	buf := Default.Get()
	defer Default.Put(buf)

	src := r
	if limit > 0 {
		// One extra byte distinguishes "exactly limit" from "over limit".
		src = io.LimitReader(r, limit+1)
	}
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, err
	}
	if limit > 0 && int64(buf.Len()) > limit {
		return nil, ErrTooLarge
	}
	return Clone(buf), nil
}

// Clone copies the buffer contents into a new slice owned by the caller.
func Clone(b Buffer) []byte {
	out := make([]byte, b.Len())
	copy(out, b.Bytes())
	return out
}
