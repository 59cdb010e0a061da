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

// Kind identifies the mutation a Message carries.
type Kind int

const (
	// KindUnknown is the zero value. It is what a decoder yields for a kind it
	// does not recognize; receivers log and drop such messages.
	KindUnknown Kind = iota
	// KindPut sets a single key to a value.
	KindPut
	// KindRemove deletes a single key.
	KindRemove
	// KindClear deletes every key.
	KindClear
	// KindPutAll sets several keys in one message.
	KindPutAll
)

var kindNames = map[Kind]string{
	KindUnknown: "UNKNOWN",
	KindPut:     "PUT",
	KindRemove:  "REMOVE",
	KindClear:   "CLEAR",
	KindPutAll:  "PUT_ALL",
}

// String returns the wire name of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// ParseKind returns the Kind with the given wire name or KindUnknown.
func ParseKind(name string) Kind {
	for kind, kindName := range kindNames {
		if kindName == name {
			return kind
		}
	}
	return KindUnknown
}
