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

// Package protocol implements the NABU Adaptor wire format: byte-stuffing
// escape, CRC-16/GENIBUS, and the fixed packet header/footer layout. It also
// carries the classic-opcode and marker-byte constants the adaptor state
// machine and the NHACP/RetroNet dispatchers classify against.
package protocol

// ESCAPE is doubled whenever it appears in server->client payload/footer
// bytes; it is distinct from every single-byte marker below, and it is the
// first byte of the two-byte ACK and FINISHED sequences.
const ESCAPE byte = 0x10

// Fixed handshake markers, values per the NABU emulator ecosystem.
var ACK = []byte{0x10, 0x06}

const (
	Confirmed    byte = 0xE4
	Authorized   byte = 0x91
	Unauthorized byte = 0x90
)

var Finished = []byte{0x10, 0xE1}

// Classic opcode range and values.
const (
	ClassicFirst byte = 0x80
	ClassicLast  byte = 0x8F

	OpReset          byte = 0x80
	OpMystery        byte = 0x81
	OpGetStatus      byte = 0x82
	OpStartUp        byte = 0x83
	OpPacketRequest  byte = 0x84
	OpChangeChannel  byte = 0x85
)

// GET_STATUS sub-discriminators and their replies.
const (
	StatusSignal   byte = 0x01
	StatusTransmit byte = 0x02

	StatusYes byte = 0x9F
	StatusNo  byte = 0x5F
)

// Packet layout constants, bit-exact with the existing NABU emulator
// ecosystem (NabuNetworkEmulator's AdaptorEmulator.cs is canonical).
const (
	HeaderSize     = 16
	FooterSize     = 2
	MaxPayloadSize = 991
	MaxPacketSize  = HeaderSize + MaxPayloadSize + FooterSize

	// PayloadTotal is the payload-plus-overhead stride used by PAK offset
	// math; PAK segments are pre-wrapped with the same header/footer shape.
	PayloadTotal = HeaderSize + MaxPayloadSize + FooterSize
)

// ImageTime is the reserved 24-bit image id whose segment 0 synthesizes the
// real-time-clock packet instead of resolving through the image provider.
const ImageTime uint32 = 0x7FFFFF

// ScratchBufferSize is the minimum escape-expansion scratch buffer size: a
// single packet doubled byte-for-byte in the worst case.
const ScratchBufferSize = 2 * MaxPacketSize
