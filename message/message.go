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
	"maps"

	gerrors "github.com/tochemey/replicamap/errors"
)

// Message is a change notification broadcast by the instance that performed a write.
//
// Key and Value are meaningful for KindPut, Key alone for KindRemove and Entries for
// KindPutAll. Origin is the instance id of the writer and is always set, which lets
// a receiver recognize its own messages without any other state.
type Message[K comparable, V any] struct {
	Kind    Kind
	Key     K
	Value   V
	Entries map[K]V
	Origin  string
}

// Visitor receives the payload of a Message according to its kind.
// Every kind has its own method: introducing a new kind means adding a method here,
// which every Visitor implementation then has to provide before the code compiles.
type Visitor[K comparable, V any] interface {
	VisitPut(key K, value V)
	VisitRemove(key K)
	VisitClear()
	VisitPutAll(entries map[K]V)
}

// NewPut creates a KindPut message
func NewPut[K comparable, V any](origin string, key K, value V) *Message[K, V] {
	return &Message[K, V]{Kind: KindPut, Key: key, Value: value, Origin: origin}
}

// NewRemove creates a KindRemove message
func NewRemove[K comparable, V any](origin string, key K) *Message[K, V] {
	return &Message[K, V]{Kind: KindRemove, Key: key, Origin: origin}
}

// NewClear creates a KindClear message
func NewClear[K comparable, V any](origin string) *Message[K, V] {
	return &Message[K, V]{Kind: KindClear, Origin: origin}
}

// NewPutAll creates a KindPutAll message. The entries are copied so that later
// changes to the caller's map do not leak into the message.
func NewPutAll[K comparable, V any](origin string, entries map[K]V) *Message[K, V] {
	return &Message[K, V]{Kind: KindPutAll, Entries: maps.Clone(entries), Origin: origin}
}

// IsFrom reports whether the message was produced by the given instance
func (m *Message[K, V]) IsFrom(instanceID string) bool {
	return m.Origin == instanceID
}

// Validate checks the mandatory fields of the message
func (m *Message[K, V]) Validate() error {
	if m.Origin == "" {
		return gerrors.NewErrMalformedMessage(errMissingOrigin)
	}
	return nil
}

// Accept dispatches the message payload to the matching Visitor method.
// It returns ErrUnknownMessageKind without calling the visitor when the kind is not
// one of the known kinds.
func (m *Message[K, V]) Accept(visitor Visitor[K, V]) error {
	switch m.Kind {
	case KindPut:
		visitor.VisitPut(m.Key, m.Value)
	case KindRemove:
		visitor.VisitRemove(m.Key)
	case KindClear:
		visitor.VisitClear()
	case KindPutAll:
		visitor.VisitPutAll(m.Entries)
	default:
		return gerrors.NewErrUnknownMessageKind(m.Kind.String())
	}
	return nil
}
