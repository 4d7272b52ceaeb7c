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

// Package nhacp dispatches the NHACP file-access sub-protocol's opcodes.
// The payload semantics themselves are out of scope (§1 Non-goals); this
// package only implements the classification contract the adaptor loop
// calls into — first refusal to RetroNet, NHACP second — and per-connection
// session bookkeeping keyed in the connection's session bag.
package nhacp

import (
	"github.com/sabouaram/nabud/transport"
)

// Opcode range NHACP claims outside the classic range.
const (
	First byte = 0xAF
	Last  byte = 0xAF
)

const sessionsKey = "nhacp.sessions"

// Dispatcher recognises NHACP opcodes and tracks open sessions per
// connection.
type Dispatcher struct{}

// New returns a ready-to-use Dispatcher.
func New() *Dispatcher { return &Dispatcher{} }

// Request implements adaptor.Dispatcher: it recognises the NHACP start
// opcode, opens a session entry, and reports true; any other opcode is
// declined (false) so the adaptor loop can fall through to "unexpected
// message".
func (d *Dispatcher) Request(conn *transport.Connection, opcode byte) bool {
	if opcode < First || opcode > Last {
		return false
	}

	sessions := sessionSet(conn)
	sessions[len(sessions)] = struct{}{}
	storeSessionSet(conn, sessions)

	return true
}

// Fini tears down any open NHACP sessions for conn, called on RESET and
// during connection destruction (§4.7).
func (d *Dispatcher) Fini(conn *transport.Connection) {
	conn.Sessions().Delete(sessionsKey)
}

func sessionSet(conn *transport.Connection) map[int]struct{} {
	if v, ok := conn.Sessions().Load(sessionsKey); ok {
		if m, ok := v.(map[int]struct{}); ok {
			return m
		}
	}
	return make(map[int]struct{})
}

func storeSessionSet(conn *transport.Connection, m map[int]struct{}) {
	conn.Sessions().Store(sessionsKey, m)
}

// SessionCount reports the number of open sessions for conn (tests only).
func SessionCount(conn *transport.Connection) int {
	return len(sessionSet(conn))
}
