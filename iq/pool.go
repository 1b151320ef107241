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

package iq

import (
	"sync"
)

// Pool is a sync.Pool of fixed-length Samples buffers, for reusing
// same-length buffers instead of reallocating them. The matched-filter
// bank and the downconverter allocate their own buffers and do not use
// it.
type Pool struct {
	length int
	pool   sync.Pool
}

// NewPool creates a Pool that hands out Samples buffers of the given
// length.
func NewPool(length int) *Pool {
	return &Pool{
		length: length,
		pool: sync.Pool{
			New: func() interface{} {
				return Make(length)
			},
		},
	}
}

// Get returns a Samples buffer of this Pool's length. The contents are
// not guaranteed to be zeroed; call Zero if that matters.
func (p *Pool) Get() Samples {
	s := p.pool.Get().(Samples)
	if len(s) != p.length {
		return Make(p.length)
	}
	return s
}

// Put returns a Samples buffer to the Pool for reuse. Buffers of the
// wrong length are dropped rather than pooled.
func (p *Pool) Put(s Samples) {
	if len(s) != p.length {
		return
	}
	p.pool.Put(s)
}

// vim: foldmethod=marker
