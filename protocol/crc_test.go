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

package protocol_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/nabud/protocol"
)

var _ = Describe("CRC16Genibus", func() {

	It("matches the reference check value for the standard check string", func() {
		Expect(protocol.CRC16Genibus([]byte("123456789"))).To(Equal(uint16(0x29B1)))
	})

	It("returns 0xFFFF for an empty input", func() {
		Expect(protocol.CRC16Genibus(nil)).To(Equal(uint16(0xFFFF)))
	})

	It("is sensitive to every bit: flipping one byte changes the result", func() {
		a := []byte{0x01, 0x02, 0x03, 0x04}
		b := []byte{0x01, 0x02, 0x03, 0x05}
		Expect(protocol.CRC16Genibus(a)).NotTo(Equal(protocol.CRC16Genibus(b)))
	})

	Describe("PutCRC", func() {
		It("writes the value big-endian into the final two bytes", func() {
			buf := make([]byte, 6)
			protocol.PutCRC(buf, 0x1234)
			Expect(buf[4:6]).To(Equal([]byte{0x12, 0x34}))
		})
	})
})
