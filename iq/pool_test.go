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

package iq_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hf-radar/chirpsounder/iq"
)

func TestPoolGetPut(t *testing.T) {
	p := iq.NewPool(64)

	s1 := p.Get()
	assert.Equal(t, 64, s1.Length())

	s1[0] = complex(5, 5)
	p.Put(s1)

	s2 := p.Get()
	assert.Equal(t, 64, s2.Length())
}

func TestPoolRejectsWrongLength(t *testing.T) {
	p := iq.NewPool(32)

	wrong := iq.Make(16)
	p.Put(wrong)

	s := p.Get()
	assert.Equal(t, 32, s.Length())
}

// vim: foldmethod=marker
