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

package adaptor_test

import (
	"fmt"
	"io"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/nabud/adaptor"
	"github.com/sabouaram/nabud/catalogue"
	"github.com/sabouaram/nabud/protocol"
	"github.com/sabouaram/nabud/transport"
)

const testDeadline = 2 * time.Second

// fakeProvider serves one in-memory raw image per channel and records the
// wasLastSegment flag of each Unload call.
type fakeProvider struct {
	channels map[int16]*catalogue.Channel
	images   map[int16][]byte
	unloaded []bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		channels: make(map[int16]*catalogue.Channel),
		images:   make(map[int16][]byte),
	}
}

func (p *fakeProvider) withChannel(ch catalogue.Channel, bytes []byte) *fakeProvider {
	p.channels[ch.Number] = &ch
	p.images[ch.Number] = bytes
	return p
}

func (p *fakeProvider) ChannelSelect(channelNumber int16) *catalogue.Channel {
	return p.channels[channelNumber]
}

func (p *fakeProvider) Load(channelNumber int16, imageID uint32) (*catalogue.Image, error) {
	b, ok := p.images[channelNumber]
	if !ok {
		return nil, fmt.Errorf("no such channel %d", channelNumber)
	}
	return &catalogue.Image{Bytes: b, ID: imageID, Type: catalogue.TypeNABU}, nil
}

func (p *fakeProvider) Unload(img *catalogue.Image, wasLastSegment bool) {
	p.unloaded = append(p.unloaded, wasLastSegment)
}

var _ catalogue.Provider = (*fakeProvider)(nil)

func newHarness(provider catalogue.Provider) (client net.Conn, a *adaptor.Adaptor, done chan struct{}) {
	var server net.Conn
	client, server = net.Pipe()

	conn := transport.New(transport.KindTCPAccepted, "test", server)
	a = &adaptor.Adaptor{Conn: conn, Provider: provider, NHACP: nil, RetroNet: nil}

	done = make(chan struct{})
	go func() {
		a.Run()
		close(done)
	}()

	return client, a, done
}

func readExact(c net.Conn, n int) []byte {
	_ = c.SetReadDeadline(time.Now().Add(testDeadline))
	b := make([]byte, n)
	_, e := io.ReadFull(c, b)
	Expect(e).NotTo(HaveOccurred())
	return b
}

func writeExact(c net.Conn, b []byte) {
	_ = c.SetWriteDeadline(time.Now().Add(testDeadline))
	_, e := c.Write(b)
	Expect(e).NotTo(HaveOccurred())
}

// readUnescaped reads escaped wire bytes until n packet bytes have been
// collected, collapsing each doubled ESCAPE byte back into one.
func readUnescaped(c net.Conn, n int) []byte {
	out := make([]byte, 0, n)
	for len(out) < n {
		b := readExact(c, 1)[0]
		if b == protocol.ESCAPE {
			Expect(readExact(c, 1)).To(Equal([]byte{protocol.ESCAPE}))
		}
		out = append(out, b)
	}
	return out
}

var _ = Describe("Adaptor classic protocol", func() {

	var client net.Conn

	AfterEach(func() {
		if client != nil {
			_ = client.Close()
		}
	})

	It("handles START_UP then GET_STATUS with no channel selected", func() {
		provider := newFakeProvider()
		var a *adaptor.Adaptor
		client, a, _ = newHarness(provider)

		writeExact(client, []byte{protocol.OpStartUp})
		Expect(readExact(client, 2)).To(Equal(protocol.ACK))
		Expect(readExact(client, 1)).To(Equal([]byte{protocol.Confirmed}))

		writeExact(client, []byte{protocol.OpGetStatus})
		Expect(readExact(client, 2)).To(Equal(protocol.ACK))
		writeExact(client, []byte{protocol.StatusSignal})
		Expect(readExact(client, 1)).To(Equal([]byte{protocol.StatusNo}))
		Expect(readExact(client, 2)).To(Equal(protocol.Finished))

		Expect(a.Conn.State()).To(Equal(transport.StateRunning))
	})

	It("reports StatusYes once a channel is selected", func() {
		provider := newFakeProvider().withChannel(catalogue.Channel{Number: 1}, []byte("x"))
		client, _, _ = newHarness(provider)

		writeExact(client, []byte{protocol.OpChangeChannel})
		Expect(readExact(client, 2)).To(Equal(protocol.ACK))
		writeExact(client, []byte{0x01, 0x00})
		Expect(readExact(client, 1)).To(Equal([]byte{protocol.Confirmed}))

		writeExact(client, []byte{protocol.OpGetStatus})
		Expect(readExact(client, 2)).To(Equal(protocol.ACK))
		writeExact(client, []byte{protocol.StatusSignal})
		Expect(readExact(client, 1)).To(Equal([]byte{protocol.StatusYes}))
		Expect(readExact(client, 2)).To(Equal(protocol.Finished))
	})

	It("serves a synthesized RTC packet for image id 0x7FFFFF", func() {
		provider := newFakeProvider()
		client, _, _ = newHarness(provider)

		writeExact(client, []byte{protocol.OpPacketRequest})
		Expect(readExact(client, 2)).To(Equal(protocol.ACK))
		writeExact(client, []byte{0x00, 0xFF, 0xFF, 0x7F})
		Expect(readExact(client, 1)).To(Equal([]byte{protocol.Confirmed}))
		Expect(readExact(client, 1)).To(Equal([]byte{protocol.Authorized}))

		writeExact(client, protocol.ACK)

		pkt := readUnescaped(client, protocol.HeaderSize+9+protocol.FooterSize)
		Expect(readExact(client, 2)).To(Equal(protocol.Finished))

		Expect(pkt[7]).To(Equal(byte(0x01)))
		Expect(pkt[8]).To(Equal(byte(0x01)))
		payload := pkt[protocol.HeaderSize : protocol.HeaderSize+9]
		Expect(payload[0:2]).To(Equal([]byte{0x02, 0x02}))
	})

	It("slices a raw image into MaxPayloadSize segments, marking only the last", func() {
		data := make([]byte, protocol.MaxPayloadSize+500)
		for i := range data {
			data[i] = byte(i)
		}
		provider := newFakeProvider().withChannel(catalogue.Channel{Number: 1}, data)
		client, _, _ = newHarness(provider)

		writeExact(client, []byte{protocol.OpChangeChannel})
		_ = readExact(client, 2)
		writeExact(client, []byte{0x01, 0x00})
		_ = readExact(client, 1)

		// segment 0: full payload, not last
		writeExact(client, []byte{protocol.OpPacketRequest})
		_ = readExact(client, 2)
		writeExact(client, []byte{0x00, 0x00, 0x00, 0x00})
		_ = readExact(client, 1)
		Expect(readExact(client, 1)).To(Equal([]byte{protocol.Authorized}))
		writeExact(client, protocol.ACK)
		seg0 := readUnescaped(client, protocol.HeaderSize+protocol.MaxPayloadSize+protocol.FooterSize)
		Expect(readExact(client, 2)).To(Equal(protocol.Finished))
		Expect(seg0[9]).To(Equal(byte(0x00))) // segTypeMore

		// segment 1: remaining 500 bytes, last
		writeExact(client, []byte{protocol.OpPacketRequest})
		_ = readExact(client, 2)
		writeExact(client, []byte{0x01, 0x00, 0x00, 0x00})
		_ = readExact(client, 1)
		Expect(readExact(client, 1)).To(Equal([]byte{protocol.Authorized}))
		writeExact(client, protocol.ACK)
		seg1 := readUnescaped(client, protocol.HeaderSize+500+protocol.FooterSize)
		Expect(readExact(client, 2)).To(Equal(protocol.Finished))
		Expect(seg1[9]).To(Equal(byte(0x10))) // segTypeLast

		rebuilt := append(append([]byte{}, seg0[protocol.HeaderSize:protocol.HeaderSize+protocol.MaxPayloadSize]...),
			seg1[protocol.HeaderSize:protocol.HeaderSize+500]...)
		Expect(rebuilt).To(Equal(data))

		// segment 2: past the end
		writeExact(client, []byte{protocol.OpPacketRequest})
		_ = readExact(client, 2)
		writeExact(client, []byte{0x02, 0x00, 0x00, 0x00})
		_ = readExact(client, 1)
		Expect(readExact(client, 1)).To(Equal([]byte{protocol.Unauthorized}))
		writeExact(client, protocol.ACK)
	})

	It("logs and does not respond to an unrecognised opcode", func() {
		provider := newFakeProvider()
		var a *adaptor.Adaptor
		client, a, _ = newHarness(provider)

		writeExact(client, []byte{0xFA})

		// Nothing should arrive; the connection keeps running.
		_ = client.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		b := make([]byte, 1)
		_, e := client.Read(b)
		Expect(e).To(HaveOccurred())

		Expect(a.Conn.State()).To(Equal(transport.StateRunning))
	})

	It("aborts the connection and exits Run when the watchdog fires mid-request", func() {
		provider := newFakeProvider()
		var a *adaptor.Adaptor
		var done chan struct{}
		client, a, done = newHarness(provider)

		// PACKET_REQUEST is acked immediately, then the adaptor blocks
		// reading the 4 follow-up bytes. None arrive, so DefaultWatchdog
		// (§4.2) must fire, abort the connection, and unwind Run.
		writeExact(client, []byte{protocol.OpPacketRequest})
		Expect(readExact(client, 2)).To(Equal(protocol.ACK))

		Eventually(func() transport.State {
			return a.Conn.State()
		}, transport.DefaultWatchdog+time.Second, 50*time.Millisecond).Should(Equal(transport.StateAborted))

		Eventually(done, time.Second).Should(BeClosed())
	})
})
