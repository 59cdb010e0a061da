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

package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	cause := errors.New("connection refused")

	err := NewErrStoreUnavailable("put", cause)
	require.Error(t, err)
	require.EqualError(t, err, "backing store unavailable: put: connection refused")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)

	err = NewErrBusUnavailable("subscribe", cause)
	require.EqualError(t, err, "notification bus unavailable: subscribe: connection refused")
	assert.ErrorIs(t, err, ErrBusUnavailable)
	assert.ErrorIs(t, err, cause)

	err = NewErrMalformedMessage(cause)
	assert.ErrorIs(t, err, ErrMalformedMessage)
	assert.ErrorIs(t, err, cause)

	err = NewErrUnknownMessageKind("MERGE")
	require.EqualError(t, err, "kind=(MERGE) unknown message kind")
	assert.ErrorIs(t, err, ErrUnknownMessageKind)
}
