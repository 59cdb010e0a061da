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

package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	t.Run("With Push/Pop keeps FIFO order across resizes", func(t *testing.T) {
		q := New[int]()
		_, ok := q.Pop()
		require.False(t, ok)

		for i := 0; i < 100; i++ {
			require.True(t, q.Push(i))
		}
		require.Equal(t, 100, q.Len())

		for i := 0; i < 100; i++ {
			x, ok := q.Pop()
			require.True(t, ok)
			require.Equal(t, i, x)
		}
		require.Zero(t, q.Len())
	})
	t.Run("With interleaved Push/Pop", func(t *testing.T) {
		q := New[int]()
		a, r := 0, 0
		for j := 0; j < 100; j++ {
			for i := 0; i < 4; i++ {
				q.Push(a)
				a++
			}
			for i := 0; i < 2; i++ {
				x, ok := q.Pop()
				require.True(t, ok)
				require.Equal(t, r, x)
				r++
			}
		}
		require.Equal(t, 200, q.Len())
	})
	t.Run("With Close drains remaining items", func(t *testing.T) {
		q := New[string]()
		q.Push("a")
		q.Push("b")
		q.Close()
		assert.True(t, q.IsClosed())
		assert.False(t, q.Push("c"))

		x, ok := q.Wait()
		require.True(t, ok)
		assert.Equal(t, "a", x)
		x, ok = q.Wait()
		require.True(t, ok)
		assert.Equal(t, "b", x)
		_, ok = q.Wait()
		assert.False(t, ok)
	})
	t.Run("With concurrent producers", func(t *testing.T) {
		q := New[int]()
		const producers, perProducer = 8, 250

		var wg sync.WaitGroup
		for p := 0; p < producers; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perProducer; i++ {
					q.Push(i)
				}
			}()
		}

		received := make(chan int, 1)
		go func() {
			count := 0
			for {
				if _, ok := q.Wait(); !ok {
					received <- count
					return
				}
				count++
			}
		}()

		wg.Wait()
		q.Close()
		assert.Equal(t, producers*perProducer, <-received)
	})
}
