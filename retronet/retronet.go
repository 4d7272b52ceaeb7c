/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package retronet dispatches the loosely-specified RetroNet file/HTTP
// shim's opcodes. Per §1 Non-goals the payload semantics are out of scope;
// this package implements only the classification contract and the blob
// bag RetroNet's local-storage emulation would stash data in.
package retronet

import "github.com/sabouaram/nabud/transport"

// First/Last is RetroNet's claimed opcode range; it overlaps no classic or
// NHACP opcode, so the adaptor's "RetroNet first refusal, then NHACP"
// ordering (§4.5) never actually has to arbitrate a collision today, but
// the ordering is preserved because the two dispatchers reserve
// independent opcode spaces by convention, not by code review.
const (
	First byte = 0xB0
	Last  byte = 0xBF
)

const blobsKey = "retronet.blobs"

// Dispatcher recognises RetroNet opcodes and owns the connection's blob
// storage bag.
type Dispatcher struct{}

// New returns a ready-to-use Dispatcher.
func New() *Dispatcher { return &Dispatcher{} }

// Request implements adaptor.Dispatcher.
func (d *Dispatcher) Request(conn *transport.Connection, opcode byte) bool {
	if opcode < First || opcode > Last {
		return false
	}

	if _, ok := conn.Sessions().Load(blobsKey); !ok {
		conn.Sessions().Store(blobsKey, make(map[string][]byte))
	}

	return true
}

// Fini frees any stored RetroNet blobs for conn, called on RESET and
// during connection destruction (§4.7).
func (d *Dispatcher) Fini(conn *transport.Connection) {
	conn.Sessions().Delete(blobsKey)
}

// BlobCount reports the number of stored blobs for conn (tests only).
func BlobCount(conn *transport.Connection) int {
	if v, ok := conn.Sessions().Load(blobsKey); ok {
		if m, ok := v.(map[string][]byte); ok {
			return len(m)
		}
	}
	return 0
}
