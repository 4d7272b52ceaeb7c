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

// Package transport provides the byte-channel abstraction over serial ports
// and accepted/listening TCP sockets that the adaptor state machine reads
// requests from and writes segments to, plus the per-connection watchdog
// and session-state bag.
package transport

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	libctx "github.com/nabbar/golib/context"
	"github.com/sabouaram/nabud/protocol"
)

// Kind identifies how a Connection is wired to its peer.
type Kind uint8

const (
	KindSerial Kind = iota
	KindTCPAccepted
	KindTCPListener
)

// State is the externally observable connection state the watchdog and
// operator commands drive.
type State uint8

const (
	StateRunning State = iota
	StateAborted
)

// DefaultWatchdog is the watchdog arm duration for the span of servicing a
// single request, per §4.2.
const DefaultWatchdog = 10 * time.Second

// Image is a minimal reference to the catalogue image type, kept here to
// avoid transport depending on catalogue; adaptor bridges the two.
type Image interface{}

// Connection represents one NABU client (serial or accepted TCP) or a
// passive TCP listener (Channel is nil in the listener case).
type Connection struct {
	Kind Kind
	Name string

	Channel io.ReadWriteCloser // nil for KindTCPListener

	// Serial-only parameters, captured at creation, advisory only
	// thereafter.
	Baud        int
	StopBits    int
	FlowControl bool

	// FileRoot is the RetroNet local-storage root; may be empty.
	FileRoot string

	mu              sync.Mutex
	selectedChannel interface{} // *catalogue.Channel, boxed to avoid an import cycle
	selectedFile    string
	lastImage       interface{} // *catalogue.Image
	retronetEnabled bool

	state int32 // atomic State

	wdMu      sync.Mutex
	wdCancel  context.CancelFunc
	wdTimer   *time.Timer

	registered int32 // atomic bool: registry membership flag
	enumCount  int32 // enumerator count; registry.Registry keeps its own per-entry count and does not update this field

	sessions libctx.Config[string] // NHACP session bag / RetroNet session handle

	scratch []byte // escape-expansion scratch buffer, >= protocol.ScratchBufferSize
}

// New returns a Connection wrapping ch (nil for a listener).
func New(kind Kind, name string, ch io.ReadWriteCloser) *Connection {
	return &Connection{
		Kind:     kind,
		Name:     name,
		Channel:  ch,
		sessions: libctx.New[string](context.Background()),
		scratch:  make([]byte, 0, protocol.ScratchBufferSize),
	}
}

// RegistryKey implements registry.Node.
func (c *Connection) RegistryKey() interface{} { return c }

// State returns the current observable state.
func (c *Connection) State() State { return State(atomic.LoadInt32(&c.state)) }

// Abort marks the connection aborted and closes its byte channel to unwedge
// a blocked read, per §5 Cancellation.
func (c *Connection) Abort() {
	atomic.StoreInt32(&c.state, int32(StateAborted))
	if c.Channel != nil {
		_ = c.Channel.Close()
	}
}

// Sessions returns the sub-protocol session bag: NHACP's session set and
// RetroNet's blob bag, each stored under its own fixed key.
func (c *Connection) Sessions() libctx.Config[string] { return c.sessions }

// SetRegistered/IsRegistered track registry membership; a connection is on
// the registry iff this flag is true (§3 invariant).
func (c *Connection) SetRegistered(v bool) {
	if v {
		atomic.StoreInt32(&c.registered, 1)
	} else {
		atomic.StoreInt32(&c.registered, 0)
	}
}

func (c *Connection) IsRegistered() bool { return atomic.LoadInt32(&c.registered) != 0 }

// ScratchBuffer returns the connection's reusable escape-expansion buffer,
// reset to zero length.
func (c *Connection) ScratchBuffer() []byte { return c.scratch[:0] }

// SetScratchBuffer stores the grown scratch buffer back (append may have
// reallocated it).
func (c *Connection) SetScratchBuffer(b []byte) { c.scratch = b }
