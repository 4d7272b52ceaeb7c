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

// crc16GenibusTable is the byte-indexed lookup table for poly 0x1021,
// precomputed at init so CRC computation never loops 8 times per byte.
var crc16GenibusTable [256]uint16

const crc16GenibusPoly = 0x1021

func init() {
	for i := 0; i < 256; i++ {
		crc := uint16(i) << 8
		for b := 0; b < 8; b++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ crc16GenibusPoly
			} else {
				crc <<= 1
			}
		}
		crc16GenibusTable[i] = crc
	}
}

// CRC16Genibus computes CRC-16/GENIBUS over b: initial 0xFFFF, MSB-first,
// final XOR 0xFFFF. The reference check value for "123456789" is 0x29B1.
func CRC16Genibus(b []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, c := range b {
		crc = (crc << 8) ^ crc16GenibusTable[byte(crc>>8)^c]
	}
	return crc ^ 0xFFFF
}

// PutCRC serializes v big-endian into the two-byte footer at the tail of buf.
func PutCRC(buf []byte, v uint16) {
	n := len(buf)
	buf[n-2] = byte(v >> 8)
	buf[n-1] = byte(v)
}
