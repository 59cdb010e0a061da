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
	"encoding/json"
	"errors"

	"github.com/tochemey/replicamap/codec"
	gerrors "github.com/tochemey/replicamap/errors"
)

var errMissingOrigin = errors.New("origin is not set")

// envelope is the JSON document published on the bus
type envelope struct {
	Kind    string            `json:"kind"`
	Key     *string           `json:"key,omitempty"`
	Value   []byte            `json:"value,omitempty"`
	Entries map[string][]byte `json:"entries,omitempty"`
	Origin  string            `json:"origin"`
}

// Encode renders the message as a JSON envelope, encoding keys and values with the codec
func Encode[K comparable, V any](c codec.Codec[K, V], m *Message[K, V]) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	env := envelope{
		Kind:   m.Kind.String(),
		Origin: m.Origin,
	}

	switch m.Kind {
	case KindPut, KindRemove:
		key, err := c.EncodeKey(m.Key)
		if err != nil {
			return nil, err
		}
		env.Key = &key

		if m.Kind == KindPut {
			if env.Value, err = c.EncodeValue(m.Value); err != nil {
				return nil, err
			}
		}
	case KindPutAll:
		entries, err := codec.EncodeEntries(c, m.Entries)
		if err != nil {
			return nil, err
		}
		env.Entries = entries
	case KindClear:
	default:
		return nil, gerrors.NewErrUnknownMessageKind(m.Kind.String())
	}

	return json.Marshal(env)
}

// Decode parses a JSON envelope produced by Encode.
//
// A well-formed envelope whose kind is not recognized is returned with KindUnknown
// and no error so that the receiver decides what to do with it. Missing origin,
// missing key or undecodable payloads yield ErrMalformedMessage.
func Decode[K comparable, V any](c codec.Codec[K, V], data []byte) (*Message[K, V], error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, gerrors.NewErrMalformedMessage(err)
	}

	m := &Message[K, V]{
		Kind:   ParseKind(env.Kind),
		Origin: env.Origin,
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	switch m.Kind {
	case KindPut, KindRemove:
		if env.Key == nil {
			return nil, gerrors.NewErrMalformedMessage(errors.New("key is not set"))
		}

		key, err := c.DecodeKey(*env.Key)
		if err != nil {
			return nil, gerrors.NewErrMalformedMessage(err)
		}
		m.Key = key

		if m.Kind == KindPut {
			if m.Value, err = c.DecodeValue(env.Value); err != nil {
				return nil, gerrors.NewErrMalformedMessage(err)
			}
		}
	case KindPutAll:
		entries, err := codec.DecodeEntries(c, env.Entries)
		if err != nil {
			return nil, gerrors.NewErrMalformedMessage(err)
		}
		m.Entries = entries
	default:
	}

	return m, nil
}
