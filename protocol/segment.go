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

package protocol

// Header mirrors the 16-byte on-wire header for a non-PAK segment: 24-bit
// image id, segment index, an owner/type tag, a 16-bit tier, 2 mystery
// bytes, a segment-type byte carrying the last-segment flag, the 16-bit
// segment number repeated, and the 16-bit offset of this segment within
// the image.
type Header struct {
	ImageID uint32 // low 24 bits significant
	Segment uint8
	Owner   uint8
	Tier    uint16
	Last    bool
	Offset  uint16
}

const (
	segTypeLast byte = 0x10
	segTypeMore byte = 0x00
)

// BuildHeader packs h into a freshly allocated HeaderSize-byte buffer.
func BuildHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)

	buf[0] = byte(h.ImageID >> 16)
	buf[1] = byte(h.ImageID >> 8)
	buf[2] = byte(h.ImageID)
	buf[3] = h.Segment
	buf[4] = h.Owner
	buf[5] = byte(h.Tier >> 8)
	buf[6] = byte(h.Tier)
	buf[7] = 0x01 // mystery
	buf[8] = 0x01 // mystery

	if h.Last {
		buf[9] = segTypeLast
	} else {
		buf[9] = segTypeMore
	}

	buf[10] = byte(h.Segment >> 8)
	buf[11] = byte(h.Segment)
	buf[12] = byte(h.Segment >> 8)
	buf[13] = byte(h.Segment)
	buf[14] = byte(h.Offset >> 8)
	buf[15] = byte(h.Offset)

	return buf
}

// BuildSegment assembles a complete header+payload+CRC packet ready for
// Escape, per §4.1/§4.4: CRC-16/GENIBUS is computed over header+payload and
// serialized big-endian into the final two bytes.
func BuildSegment(h Header, payload []byte) []byte {
	buf := make([]byte, 0, HeaderSize+len(payload)+FooterSize)
	buf = append(buf, BuildHeader(h)...)
	buf = append(buf, payload...)
	buf = append(buf, 0, 0)

	crc := CRC16Genibus(buf[:len(buf)-FooterSize])
	PutCRC(buf, crc)

	return buf
}

// RefreshPAKCRC recomputes and rewrites the CRC footer of a pre-wrapped PAK
// segment in place; PAK bytes on disk carry a CRC that must be refreshed
// after extraction.
func RefreshPAKCRC(segment []byte) {
	if len(segment) < FooterSize {
		return
	}
	crc := CRC16Genibus(segment[:len(segment)-FooterSize])
	PutCRC(segment, crc)
}

// RawSegmentCount returns the number of segments a raw image of length n
// splits into under MaxPayloadSize-sized slicing.
func RawSegmentCount(n int) int {
	if n == 0 {
		return 1
	}
	return (n + MaxPayloadSize - 1) / MaxPayloadSize
}
