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

package transport_test

import (
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/nabud/transport"
)

var _ = Describe("Connection", func() {

	var (
		client net.Conn
		server net.Conn
		conn   *transport.Connection
	)

	BeforeEach(func() {
		client, server = net.Pipe()
		conn = transport.New(transport.KindTCPAccepted, "test", server)
	})

	AfterEach(func() {
		_ = client.Close()
	})

	It("starts in the running state", func() {
		Expect(conn.State()).To(Equal(transport.StateRunning))
	})

	It("clears the selected file when a new channel is selected", func() {
		conn.SetSelectedFile("OLDFILE.nabu")
		Expect(conn.SelectedFile()).To(Equal("OLDFILE.nabu"))

		conn.SetChannel("some-channel", false)
		Expect(conn.SelectedFile()).To(BeEmpty())
		Expect(conn.SelectedChannel()).To(Equal("some-channel"))
	})

	It("mirrors the channel's RetroNet flag", func() {
		conn.SetChannel("chan", true)
		Expect(conn.RetroNetEnabled()).To(BeTrue())
	})

	It("swaps the last image only if it still matches the expected value", func() {
		conn.SetLastImage("a")
		Expect(conn.SetLastImageIf("a", "b")).To(BeTrue())
		Expect(conn.LastImage()).To(Equal("b"))

		Expect(conn.SetLastImageIf("a", "c")).To(BeFalse())
		Expect(conn.LastImage()).To(Equal("b"))
	})

	It("transitions to aborted and closes the channel on Abort", func() {
		conn.Abort()
		Expect(conn.State()).To(Equal(transport.StateAborted))

		_, err := client.Write([]byte{0x01})
		Expect(err).To(HaveOccurred())
	})

	It("aborts the connection when the watchdog fires before being disarmed", func() {
		conn.ArmWatchdog(10 * time.Millisecond)

		Eventually(func() transport.State {
			return conn.State()
		}, time.Second, 5*time.Millisecond).Should(Equal(transport.StateAborted))
	})

	It("does not abort when the watchdog is disarmed in time", func() {
		conn.ArmWatchdog(50 * time.Millisecond)
		conn.DisarmWatchdog()

		Consistently(func() transport.State {
			return conn.State()
		}, 100*time.Millisecond, 10*time.Millisecond).Should(Equal(transport.StateRunning))
	})

	It("tracks registry membership independently of registry package", func() {
		Expect(conn.IsRegistered()).To(BeFalse())
		conn.SetRegistered(true)
		Expect(conn.IsRegistered()).To(BeTrue())
	})

	It("reuses the scratch buffer truncated to zero length", func() {
		b := conn.ScratchBuffer()
		Expect(b).To(HaveLen(0))

		b = append(b, 0x01, 0x02)
		conn.SetScratchBuffer(b)

		b2 := conn.ScratchBuffer()
		Expect(b2).To(HaveLen(0))
		Expect(cap(b2)).To(BeNumerically(">=", 2))
	})
})

var _ = Describe("ReadByte/ReadN/Write", func() {

	It("round-trips bytes written by the peer", func() {
		client, server := net.Pipe()
		defer client.Close()
		conn := transport.New(transport.KindTCPAccepted, "rw", server)

		go func() {
			_, _ = client.Write([]byte{0x84, 0x01, 0x02, 0x03, 0x04})
		}()

		op, e := conn.ReadByte()
		Expect(e).NotTo(HaveOccurred())
		Expect(op).To(Equal(byte(0x84)))

		rest, e := conn.ReadN(4)
		Expect(e).NotTo(HaveOccurred())
		Expect(rest).To(Equal([]byte{0x01, 0x02, 0x03, 0x04}))
	})

	It("writes bytes the peer can read in full", func() {
		client, server := net.Pipe()
		defer client.Close()
		conn := transport.New(transport.KindTCPAccepted, "rw", server)

		done := make(chan []byte, 1)
		go func() {
			buf := make([]byte, 3)
			_, _ = client.Read(buf)
			done <- buf
		}()

		Expect(conn.Write([]byte{0xAA, 0xBB, 0xCC})).To(Succeed())
		Expect(<-done).To(Equal([]byte{0xAA, 0xBB, 0xCC}))
	})
})
