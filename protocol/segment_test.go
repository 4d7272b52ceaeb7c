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

var _ = Describe("BuildHeader/BuildSegment", func() {

	It("produces a HeaderSize-byte header", func() {
		h := protocol.BuildHeader(protocol.Header{ImageID: 0x010203, Segment: 2, Last: true, Offset: 991})
		Expect(h).To(HaveLen(protocol.HeaderSize))
	})

	It("packs the 24-bit image id big-endian in the first three bytes", func() {
		h := protocol.BuildHeader(protocol.Header{ImageID: 0xABCDEF})
		Expect(h[0:3]).To(Equal([]byte{0xAB, 0xCD, 0xEF}))
	})

	It("appends a CRC footer whose recomputation matches", func() {
		seg := protocol.BuildSegment(protocol.Header{ImageID: 1, Segment: 0, Last: true}, []byte("hello"))
		Expect(seg).To(HaveLen(protocol.HeaderSize + 5 + protocol.FooterSize))

		crc := protocol.CRC16Genibus(seg[:len(seg)-protocol.FooterSize])
		Expect(seg[len(seg)-2]).To(Equal(byte(crc >> 8)))
		Expect(seg[len(seg)-1]).To(Equal(byte(crc)))
	})

	It("RefreshPAKCRC rewrites the footer to match the new body", func() {
		seg := protocol.BuildSegment(protocol.Header{ImageID: 1}, []byte("abc"))
		// corrupt the body in place, then refresh
		seg[protocol.HeaderSize] = 'X'
		protocol.RefreshPAKCRC(seg)

		crc := protocol.CRC16Genibus(seg[:len(seg)-protocol.FooterSize])
		Expect(seg[len(seg)-2]).To(Equal(byte(crc >> 8)))
		Expect(seg[len(seg)-1]).To(Equal(byte(crc)))
	})
})

var _ = Describe("RawSegmentCount", func() {

	It("reports 1 for an empty image", func() {
		Expect(protocol.RawSegmentCount(0)).To(Equal(1))
	})

	It("reports 1 for an image that exactly fits one payload", func() {
		Expect(protocol.RawSegmentCount(protocol.MaxPayloadSize)).To(Equal(1))
	})

	It("reports 2 for an image one byte over a single payload", func() {
		Expect(protocol.RawSegmentCount(protocol.MaxPayloadSize + 1)).To(Equal(2))
	})

	It("covers the full image with concatenated segment slices, ending in exactly one Last segment", func() {
		data := make([]byte, protocol.MaxPayloadSize*2+500)
		for i := range data {
			data[i] = byte(i)
		}

		var rebuilt []byte
		lastCount := 0
		segments := protocol.RawSegmentCount(len(data))

		for s := 0; s < segments; s++ {
			offset := s * protocol.MaxPayloadSize
			length := protocol.MaxPayloadSize
			last := false
			if offset+length >= len(data) {
				length = len(data) - offset
				last = true
				lastCount++
			}
			Expect(last).To(Equal(s == segments-1))
			rebuilt = append(rebuilt, data[offset:offset+length]...)
		}

		Expect(rebuilt).To(Equal(data))
		Expect(lastCount).To(Equal(1))
	})
})
