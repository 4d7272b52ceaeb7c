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

package adaptor

import (
	"time"

	"github.com/sabouaram/nabud/catalogue"
	"github.com/sabouaram/nabud/protocol"
	"github.com/sabouaram/nabud/transport"

	liblog "github.com/nabbar/golib/logger"
)

// Adaptor runs the classic-protocol loop for one connection.
type Adaptor struct {
	Conn     *transport.Connection
	Provider catalogue.Provider
	NHACP    Dispatcher
	RetroNet Dispatcher
	Log      liblog.Logger

	// Watchdog overrides transport.DefaultWatchdog when non-zero, letting
	// the operator tune how long a request is allowed to hang waiting for
	// its follow-up bytes before the connection is aborted (§4.2).
	Watchdog time.Duration
}

func (a *Adaptor) watchdog() time.Duration {
	if a.Watchdog > 0 {
		return a.Watchdog
	}
	return transport.DefaultWatchdog
}

// Run executes the loop until the connection is aborted. A read failure on a
// connection that is not aborted is looped past, as is any per-request
// failure, per §7; Run returns no error.
func (a *Adaptor) Run() {
	for {
		a.Conn.DisarmWatchdog()

		op, e := a.Conn.ReadByte()
		if e != nil {
			if a.Conn.State() == transport.StateAborted {
				return
			}
			continue
		}

		a.Conn.ArmWatchdog(a.watchdog())

		switch {
		case op >= protocol.ClassicFirst && op <= protocol.ClassicLast:
			a.dispatchClassic(op)
		case a.RetroNet != nil && a.RetroNet.Request(a.Conn, op):
			// handled
		case a.NHACP != nil && a.NHACP.Request(a.Conn, op):
			// handled
		default:
			a.logf("unexpected message 0x%02x", op)
			// Known lossy recovery: the unrecognised opcode's follow-up
			// bytes, if any, are not drained here. Resynchronisation
			// depends on the NABU client itself resetting. Do not "fix".
		}

		if a.Conn.State() == transport.StateAborted {
			return
		}
	}
}

func (a *Adaptor) logf(msg string, args ...interface{}) {
	if a.Log != nil {
		a.Log.Warning(msg, nil, args...)
	}
}

func (a *Adaptor) dispatchClassic(op byte) {
	switch op {
	case protocol.OpReset:
		a.reboot()
		a.sendACK()
		a.sendByte(protocol.Confirmed)

	case protocol.OpMystery:
		a.sendACK()
		if _, e := a.Conn.ReadN(2); e != nil {
			a.Conn.Abort()
			return
		}
		a.sendByte(protocol.Confirmed)

	case protocol.OpGetStatus:
		a.handleGetStatus()

	case protocol.OpStartUp:
		a.sendACK()
		a.sendByte(protocol.Confirmed)

	case protocol.OpPacketRequest:
		a.handlePacketRequest()

	case protocol.OpChangeChannel:
		a.handleChangeChannel()

	default:
		a.logf("unknown classic opcode 0x%02x", op)
	}
}

func (a *Adaptor) handleGetStatus() {
	a.sendACK()

	kind, e := a.Conn.ReadByte()
	if e != nil {
		a.Conn.Abort()
		return
	}

	switch kind {
	case protocol.StatusSignal:
		if a.Conn.SelectedChannel() != nil {
			a.sendByte(protocol.StatusYes)
		} else {
			a.sendByte(protocol.StatusNo)
		}
		a.sendRaw(protocol.Finished)
	case protocol.StatusTransmit:
		a.sendByte(protocol.StatusYes)
		a.sendRaw(protocol.Finished)
	default:
		a.logf("unknown GET_STATUS type 0x%02x", kind)
	}
}

func (a *Adaptor) handleChangeChannel() {
	a.sendACK()

	b, e := a.Conn.ReadN(2)
	if e != nil {
		a.Conn.Abort()
		return
	}

	num := int16(uint16(b[0]) | uint16(b[1])<<8)

	ch := a.Provider.ChannelSelect(num)
	retronet := false
	if ch != nil {
		retronet = ch.RetroNetEnabled
	}
	a.Conn.SetChannel(ch, retronet)

	a.sendByte(protocol.Confirmed)
}

func (a *Adaptor) reboot() {
	if a.NHACP != nil {
		a.NHACP.Fini(a.Conn)
	}
	if a.RetroNet != nil {
		a.RetroNet.Fini(a.Conn)
	}
}

func (a *Adaptor) sendACK() {
	_ = a.Conn.Write(protocol.ACK)
}

func (a *Adaptor) sendByte(b byte) {
	_ = a.Conn.Write([]byte{b})
}

func (a *Adaptor) sendRaw(b []byte) {
	_ = a.Conn.Write(b)
}

// awaitACK blocks for the 2-byte ACK sequence; used after AUTHORIZED and
// after UNAUTHORIZED, per §4.4.
func (a *Adaptor) awaitACK() bool {
	b, e := a.Conn.ReadN(len(protocol.ACK))
	if e != nil {
		return false
	}
	for i, v := range protocol.ACK {
		if b[i] != v {
			return false
		}
	}
	return true
}

// sendUnauthorized sends the single UNAUTHORIZED byte and awaits ACK.
func (a *Adaptor) sendUnauthorized() {
	a.sendByte(protocol.Unauthorized)
	a.awaitACK()
}

// sendPacket escape-expands buf and sends it framed with AUTHORIZED/ACK/
// FINISHED, per §4.4's send_packet.
func (a *Adaptor) sendPacket(buf []byte) {
	scratch := protocol.Escape(a.Conn.ScratchBuffer(), buf)
	a.Conn.SetScratchBuffer(scratch)

	a.sendByte(protocol.Authorized)

	if !a.awaitACK() {
		a.logf("client did not ACK AUTHORIZED; dropping packet")
		return
	}

	_ = a.Conn.Write(scratch)
	a.sendRaw(protocol.Finished)
}
