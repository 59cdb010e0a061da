// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/replicamap/codec"
	gerrors "github.com/tochemey/replicamap/errors"
)

type recorder struct {
	calls []string
	state map[string]int
}

func newRecorder() *recorder {
	return &recorder{state: map[string]int{}}
}

func (r *recorder) VisitPut(key string, value int) {
	r.calls = append(r.calls, "put")
	r.state[key] = value
}

func (r *recorder) VisitRemove(key string) {
	r.calls = append(r.calls, "remove")
	delete(r.state, key)
}

func (r *recorder) VisitClear() {
	r.calls = append(r.calls, "clear")
	clear(r.state)
}

func (r *recorder) VisitPutAll(entries map[string]int) {
	r.calls = append(r.calls, "putAll")
	for k, v := range entries {
		r.state[k] = v
	}
}

func TestKind(t *testing.T) {
	for _, kind := range []Kind{KindPut, KindRemove, KindClear, KindPutAll} {
		assert.Equal(t, kind, ParseKind(kind.String()))
	}
	assert.Equal(t, "PUT_ALL", KindPutAll.String())
	assert.Equal(t, KindUnknown, ParseKind("MERGE"))
	assert.Equal(t, "UNKNOWN", Kind(99).String())
}

func TestAccept(t *testing.T) {
	t.Run("dispatches every kind", func(t *testing.T) {
		r := newRecorder()
		require.NoError(t, NewPut("a", "k1", 1).Accept(r))
		require.NoError(t, NewPutAll("a", map[string]int{"k2": 2, "k3": 3}).Accept(r))
		require.NoError(t, NewRemove[string, int]("a", "k3").Accept(r))
		assert.Equal(t, map[string]int{"k1": 1, "k2": 2}, r.state)
		require.NoError(t, NewClear[string, int]("a").Accept(r))
		assert.Empty(t, r.state)
		assert.Equal(t, []string{"put", "putAll", "remove", "clear"}, r.calls)
	})
	t.Run("rejects unknown kinds", func(t *testing.T) {
		r := newRecorder()
		err := (&Message[string, int]{Kind: KindUnknown, Origin: "a"}).Accept(r)
		require.ErrorIs(t, err, gerrors.ErrUnknownMessageKind)
		assert.Empty(t, r.calls)
	})
	t.Run("replaying a sequence is deterministic", func(t *testing.T) {
		sequence := []*Message[string, int]{
			NewPut("a", "k1", 1),
			NewClear[string, int]("b"),
			NewPut("a", "k2", 2),
			NewPut("a", "k2", 2),
		}
		fold := func() map[string]int {
			r := newRecorder()
			for _, m := range sequence {
				require.NoError(t, m.Accept(r))
			}
			return r.state
		}
		first := fold()
		assert.Equal(t, map[string]int{"k2": 2}, first)
		assert.Equal(t, first, fold())
	})
}

func TestNewPutAllCopiesEntries(t *testing.T) {
	entries := map[string]int{"k1": 1}
	m := NewPutAll("a", entries)
	entries["k2"] = 2
	assert.Len(t, m.Entries, 1)
}

func TestIsFrom(t *testing.T) {
	m := NewClear[string, int]("instance-a")
	assert.True(t, m.IsFrom("instance-a"))
	assert.False(t, m.IsFrom("instance-b"))
}

func TestWire(t *testing.T) {
	c := codec.JSON[string, int]()

	t.Run("round trips every kind", func(t *testing.T) {
		messages := []*Message[string, int]{
			NewPut("a", "k1", 7),
			NewRemove[string, int]("a", "k1"),
			NewClear[string, int]("a"),
			NewPutAll("a", map[string]int{"k1": 1, "k2": 2}),
		}
		for _, m := range messages {
			data, err := Encode(c, m)
			require.NoError(t, err)
			decoded, err := Decode(c, data)
			require.NoError(t, err)
			assert.Equal(t, m, decoded)
		}
	})
	t.Run("unknown kinds decode as KindUnknown", func(t *testing.T) {
		decoded, err := Decode(c, []byte(`{"kind":"MERGE","origin":"a"}`))
		require.NoError(t, err)
		assert.Equal(t, KindUnknown, decoded.Kind)
		assert.Equal(t, "a", decoded.Origin)
	})
	t.Run("missing origin is malformed", func(t *testing.T) {
		_, err := Decode(c, []byte(`{"kind":"CLEAR"}`))
		require.ErrorIs(t, err, gerrors.ErrMalformedMessage)

		_, err = Encode(c, &Message[string, int]{Kind: KindClear})
		require.ErrorIs(t, err, gerrors.ErrMalformedMessage)
	})
	t.Run("missing key is malformed", func(t *testing.T) {
		_, err := Decode(c, []byte(`{"kind":"REMOVE","origin":"a"}`))
		require.ErrorIs(t, err, gerrors.ErrMalformedMessage)
	})
	t.Run("garbage is malformed", func(t *testing.T) {
		_, err := Decode(c, []byte(`not json`))
		require.ErrorIs(t, err, gerrors.ErrMalformedMessage)

		_, err = Decode(c, []byte(`{"kind":"PUT","key":"k","value":"eA==","origin":"a"}`))
		require.ErrorIs(t, err, gerrors.ErrMalformedMessage)
	})
	t.Run("unknown kinds cannot be encoded", func(t *testing.T) {
		_, err := Encode(c, &Message[string, int]{Kind: KindUnknown, Origin: "a"})
		require.ErrorIs(t, err, gerrors.ErrUnknownMessageKind)
	})
}
