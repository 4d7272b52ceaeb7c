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

package transport

// SetChannel installs the selected channel (opaque to transport; adaptor
// passes a *catalogue.Channel) and its retronetEnabled flag atomically with
// the change, clearing the selected file per §3's invariant.
func (c *Connection) SetChannel(ch interface{}, retronetEnabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selectedChannel = ch
	c.retronetEnabled = retronetEnabled
	c.selectedFile = ""
}

// SelectedChannel returns the currently selected channel, or nil.
func (c *Connection) SelectedChannel() interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedChannel
}

// RetroNetEnabled mirrors the selected channel's flag.
func (c *Connection) RetroNetEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retronetEnabled
}

// SetSelectedFile sets the selected file name under the lock.
func (c *Connection) SetSelectedFile(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedFile = name
}

// SelectedFile returns the selected file name read under the lock. Go
// strings are immutable, so the returned value is safe to keep and nothing
// is allocated under the lock; the retry-on-growth-race pattern for
// arbitrary-length buffers (§4.6) is unnecessary here.
func (c *Connection) SelectedFile() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedFile
}

// SetLastImage installs img as the last-served image.
func (c *Connection) SetLastImage(img interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastImage = img
}

// LastImage returns the last-served image, or nil.
func (c *Connection) LastImage() interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastImage
}

// SetLastImageIf replaces the last-served image with next only if the
// current value is still equal to expect; used when a segment finisher
// wants to release only if nothing else replaced the image in the interim.
// Returns whether the swap happened.
func (c *Connection) SetLastImageIf(expect, next interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastImage != expect {
		return false
	}
	c.lastImage = next
	return true
}
