// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2020
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

// Package ring defines the sample source abstraction every other
// component reads through, plus RingStore, a concrete in-memory
// reference implementation.
package ring

import (
	"fmt"
	"sync"
)

// ErrOutOfBounds is returned by Read when the requested range is not
// currently available in the source.
var ErrOutOfBounds = fmt.Errorf("ring: read out of bounds")

// Metadata describes the fixed physical parameters of a channel.
type Metadata struct {
	SampleRate uint
	CenterFreq float64
}

// Source is the abstract sample stream every component downstream of
// the sample source is built against: a monotonically increasing,
// integer-indexed complex sample index space with a sliding window of
// validity.
type Source interface {
	// Bounds returns the inclusive-low, exclusive-high sample index
	// range currently available for reading, [iLo, iHi).
	Bounds() (iLo, iHi int64, err error)

	// Read returns n complex samples starting at index i. It returns
	// ErrOutOfBounds if [i, i+n) is not a subset of the current Bounds.
	Read(i int64, n int) ([]complex64, error)

	// Metadata returns the fixed sample rate and center frequency.
	Metadata() (Metadata, error)
}

// RingStore is a fixed-capacity, index-addressable circular buffer of
// complex64 samples: a concrete, dependency-free Source used by the
// tests and by cmd/chirpsounder. It keeps
// the same sync.Mutex/sync.Cond concurrency discipline as a slot-queue
// ring buffer, but indexes by continuous sample index rather than by
// slot, matching the Source contract above.
type RingStore struct {
	mu   sync.Mutex
	cond *sync.Cond

	buf []complex64

	// head is the lowest sample index still held; the store holds
	// samples [head, head+written), sample i living at buf[i%capacity].
	head    int64
	written int64

	meta Metadata

	closed bool
}

// NewRingStore allocates a RingStore with room for capacity samples.
func NewRingStore(capacity int, meta Metadata) *RingStore {
	rs := &RingStore{
		buf:  make([]complex64, capacity),
		meta: meta,
	}
	rs.cond = sync.NewCond(&rs.mu)
	return rs
}

// Append writes samples to the head of the store, advancing Bounds()'s
// upper edge. If the store is full, the oldest samples are overwritten
// and the lower bound advances to match.
func (rs *RingStore) Append(samples []complex64) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	cap := int64(len(rs.buf))
	for _, s := range samples {
		idx := (rs.head + rs.written) % cap
		rs.buf[idx] = s
		if rs.written < cap {
			rs.written++
		} else {
			rs.head++
		}
	}
	rs.cond.Broadcast()
}

// Bounds returns the currently valid [iLo, iHi) sample index range.
func (rs *RingStore) Bounds() (int64, int64, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.head, rs.head + rs.written, nil
}

// WaitForBound blocks until the upper bound of Bounds() reaches at
// least i, or the store is closed. The realtime ionogram loop does not
// call it; it polls Bounds instead.
func (rs *RingStore) WaitForBound(i int64) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for rs.head+rs.written < i && !rs.closed {
		rs.cond.Wait()
	}
}

// Close releases any readers blocked in WaitForBound.
func (rs *RingStore) Close() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.closed = true
	rs.cond.Broadcast()
	return nil
}

// Read returns n samples starting at sample index i.
func (rs *RingStore) Read(i int64, n int) ([]complex64, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	lo, hi := rs.head, rs.head+rs.written
	if i < lo || i+int64(n) > hi {
		return nil, ErrOutOfBounds
	}

	out := make([]complex64, n)
	cap := int64(len(rs.buf))
	for k := 0; k < n; k++ {
		out[k] = rs.buf[(i+int64(k))%cap]
	}
	return out, nil
}

// Metadata returns the fixed sample rate and center frequency.
func (rs *RingStore) Metadata() (Metadata, error) {
	return rs.meta, nil
}

// vim: foldmethod=marker
