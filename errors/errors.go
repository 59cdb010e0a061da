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
	"fmt"
)

var (
	// ErrStoreUnavailable is returned when a backing store call fails.
	// The local cache mutation that preceded the call is kept.
	ErrStoreUnavailable = errors.New("backing store unavailable")

	// ErrBusUnavailable is returned when a notification could not be published
	// or a subscription could not be established.
	ErrBusUnavailable = errors.New("notification bus unavailable")

	// ErrMapClosed is returned when a write is attempted on a map that has been closed.
	ErrMapClosed = errors.New("replicated map is closed")

	// ErrInvalidMapName is returned when the map name cannot be used to derive
	// store and channel names. A valid name starts with an alphanumeric character
	// followed by alphanumeric characters, '-' or '_'.
	ErrInvalidMapName = errors.New("invalid map name, must contain only word characters (i.e. [a-zA-Z0-9] plus non-leading '-' or '_')")

	// ErrUnknownMessageKind is returned when a change notification carries a kind
	// this instance does not understand.
	ErrUnknownMessageKind = errors.New("unknown message kind")

	// ErrMalformedMessage is returned when a change notification cannot be decoded
	// or misses a mandatory field.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrShutdownTimeout is returned when background work did not stop within the
	// configured grace period and had to be forced.
	ErrShutdownTimeout = errors.New("shutdown timed out")

	// ErrNilStore is returned when a map is created without a backing store.
	ErrNilStore = errors.New("backing store is not defined")

	// ErrNilBus is returned when a map is created without a notification bus.
	ErrNilBus = errors.New("notification bus is not defined")

	// ErrNilCodec is returned when a remote adapter is created without a codec.
	ErrNilCodec = errors.New("codec is not defined")
)

// NewErrStoreUnavailable wraps a store failure so that both the category and the cause
// can be matched with errors.Is
func NewErrStoreUnavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

// NewErrBusUnavailable wraps a bus failure so that both the category and the cause
// can be matched with errors.Is
func NewErrBusUnavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBusUnavailable, op, err)
}

// NewErrMalformedMessage wraps a decoding failure with ErrMalformedMessage
func NewErrMalformedMessage(err error) error {
	return errors.Join(ErrMalformedMessage, err)
}

// NewErrUnknownMessageKind formats an error with ErrUnknownMessageKind
func NewErrUnknownMessageKind(kind string) error {
	return fmt.Errorf("kind=(%s) %w", kind, ErrUnknownMessageKind)
}
