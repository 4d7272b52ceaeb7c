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
)

func (a *Adaptor) handlePacketRequest() {
	a.sendACK()

	b, e := a.Conn.ReadN(4)
	if e != nil {
		a.Conn.Abort()
		return
	}

	segment := b[0]
	imageID := uint32(b[1]) | uint32(b[2])<<8 | uint32(b[3])<<16

	a.sendByte(protocol.Confirmed)

	if imageID == protocol.ImageTime {
		a.servePacketTime(segment)
		return
	}

	var channelNumber int16
	if ch, ok := a.Conn.SelectedChannel().(*catalogue.Channel); ok && ch != nil {
		channelNumber = ch.Number
	}

	img, e := a.Provider.Load(channelNumber, imageID)
	if e != nil || img == nil {
		a.sendUnauthorized()
		return
	}

	a.Conn.SetLastImage(img)

	var wasLast bool
	if img.Type == catalogue.TypePAK {
		wasLast = a.servePAKSegment(img, segment)
	} else {
		wasLast = a.serveRawSegment(img, segment)
	}

	a.Provider.Unload(img, wasLast)
}

func (a *Adaptor) servePacketTime(segment byte) {
	if segment != 0 {
		a.sendUnauthorized()
		return
	}

	payload := protocol.TimePayload(time.Now())
	pkt := protocol.BuildSegment(protocol.Header{
		ImageID: protocol.ImageTime,
		Segment: 0,
		Last:    true,
	}, payload)

	a.sendPacket(pkt)
}

// serveRawSegment slices a raw NABU image per §4.4: offset = segment *
// MaxPayloadSize, length capped by remaining bytes, last = final slice.
func (a *Adaptor) serveRawSegment(img *catalogue.Image, segment byte) bool {
	offset := int(segment) * protocol.MaxPayloadSize
	length := protocol.MaxPayloadSize

	if offset+length >= len(img.Bytes) {
		// Preserved as-is: uses >= rather than >, so the final-segment
		// detection includes the exact-fit boundary. Emulator clients
		// depend on this; do not "fix" it.
		length = len(img.Bytes) - offset
		if length < 0 {
			a.sendUnauthorized()
			return false
		}
		pkt := protocol.BuildSegment(protocol.Header{
			ImageID: img.ID,
			Segment: segment,
			Last:    true,
			Offset:  uint16(offset),
		}, img.Bytes[offset:offset+length])
		a.sendPacket(pkt)
		return true
	}

	pkt := protocol.BuildSegment(protocol.Header{
		ImageID: img.ID,
		Segment: segment,
		Last:    false,
		Offset:  uint16(offset),
	}, img.Bytes[offset:offset+length])
	a.sendPacket(pkt)
	return false
}

// servePAKSegment slices a pre-wrapped PAK image per §4.4's offset formula
// and recomputes the CRC footer after extraction.
func (a *Adaptor) servePAKSegment(img *catalogue.Image, segment byte) bool {
	k := int(segment)
	offset := k*protocol.PayloadTotal + 2*k + 2
	length := protocol.PayloadTotal

	if offset >= len(img.Bytes) {
		a.sendUnauthorized()
		return false
	}

	remaining := len(img.Bytes) - offset
	last := false
	if remaining < length {
		length = remaining
	}

	if length < protocol.HeaderSize+protocol.FooterSize {
		// Preserved as-is: the length-bounds error path returns `last`,
		// which is still false here (set true only below, after this
		// check), rather than an explicit false. Unreachable under
		// protocol-conforming clients; keep behaviour.
		a.sendUnauthorized()
		return last
	}

	if remaining < protocol.PayloadTotal {
		last = true
	}

	pkt := make([]byte, length)
	copy(pkt, img.Bytes[offset:offset+length])
	protocol.RefreshPAKCRC(pkt)

	a.sendPacket(pkt)
	return last
}
