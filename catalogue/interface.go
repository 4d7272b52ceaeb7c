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

// Package catalogue defines the image/channel data model and the Provider
// interface the adaptor state machine resolves PACKET_REQUEST and
// CHANGE_CHANNEL opcodes through.
package catalogue

import "sync/atomic"

// Type distinguishes how an image's bytes are already shaped on disk.
type Type uint8

const (
	// TypeNABU images are raw; the adaptor slices MaxPayloadSize chunks.
	TypeNABU Type = iota
	// TypePAK images are pre-wrapped; bytes already contain segment framing
	// that only needs its CRC footer refreshed per slice.
	TypePAK
)

// Channel is a catalogue entry keyed by a 16-bit signed number.
type Channel struct {
	Number          int16
	Type            Type
	DefaultFile     string
	RetroNetEnabled bool
}

// Image is a resolvable artifact: name, bytes, numeric 24-bit id, the
// originating channel (nil for synthetic images like the clock packet),
// and the channel's type discriminator. Reference-counted; it is passed back
// to Provider.Unload once per successful Load.
type Image struct {
	Name    string
	Bytes   []byte
	ID      uint32
	Channel *Channel
	Type    Type

	refs int32
}

// Retain increments the reference count; providers call it on the Image
// they return from Load. It is a no-op on a nil Image.
func (i *Image) Retain() {
	if i != nil {
		atomic.AddInt32(&i.refs, 1)
	}
}

// refCount reports the current reference count.
func (i *Image) refCount() int32 {
	if i == nil {
		return 0
	}
	return atomic.LoadInt32(&i.refs)
}

// Provider resolves images and receives channel-selection notifications.
// Implementations own image lifetime and reference counting; Load returns
// a retained Image that the caller passes to Unload exactly once.
type Provider interface {
	// Load resolves (channelNumber, imageID) to an Image, or nil if not
	// found. id == protocol.ImageTime is never passed to a Provider — the
	// adaptor synthesizes that segment itself.
	Load(channelNumber int16, imageID uint32) (*Image, error)

	// Unload releases an Image obtained from Load. wasLastSegment signals
	// the provider it may free any cached resources eagerly.
	Unload(img *Image, wasLastSegment bool)

	// ChannelSelect notifies the provider a connection selected channelNumber,
	// returning the resolved Channel (nil if unknown).
	ChannelSelect(channelNumber int16) *Channel
}
