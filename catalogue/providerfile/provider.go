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

// Package providerfile resolves images from a directory tree on local disk,
// one channel per subdirectory, streamed through file/progress the same way
// the teacher's own file helpers buffer reads from disk.
package providerfile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sabouaram/nabud/catalogue"
	libprg "github.com/nabbar/golib/file/progress"
)

// Provider resolves (channel, image-id) pairs to files under Root, one
// directory per channel number. A channel with a DefaultFile serves that
// file for every image id; otherwise the file is "<hex-image-id>.nabu".
type Provider struct {
	Root string

	mu       sync.RWMutex
	channels map[int16]*catalogue.Channel
}

// New returns a Provider rooted at root, seeded with the given channels.
func New(root string, channels []catalogue.Channel) *Provider {
	p := &Provider{Root: root, channels: make(map[int16]*catalogue.Channel, len(channels))}
	for i := range channels {
		c := channels[i]
		p.channels[c.Number] = &c
	}
	return p
}

func (p *Provider) ChannelSelect(channelNumber int16) *catalogue.Channel {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.channels[channelNumber]
}

func (p *Provider) Load(channelNumber int16, imageID uint32) (*catalogue.Image, error) {
	p.mu.RLock()
	ch := p.channels[channelNumber]
	p.mu.RUnlock()

	if ch == nil {
		return nil, fmt.Errorf("providerfile: unknown channel %d", channelNumber)
	}

	name := ch.DefaultFile
	if name == "" {
		name = fmt.Sprintf("%06X.nabu", imageID)
	}

	path := filepath.Join(p.Root, fmt.Sprintf("%d", channelNumber), name)

	f, e := libprg.Open(path)
	if e != nil {
		return nil, e
	}
	defer func() { _ = f.Close() }()

	buf := bytes.NewBuffer(nil)
	if _, e = f.WriteTo(buf); e != nil {
		return nil, e
	}

	img := &catalogue.Image{
		Name:    name,
		Bytes:   buf.Bytes(),
		ID:      imageID,
		Channel: ch,
		Type:    ch.Type,
	}
	img.Retain()

	return img, nil
}

func (p *Provider) Unload(img *catalogue.Image, wasLastSegment bool) {
	// Bytes are owned by the returned *Image alone (no shared cache), so
	// there is nothing to release beyond letting the GC reclaim img.Bytes.
	_ = wasLastSegment
}

var _ catalogue.Provider = (*Provider)(nil)
