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

import (
	"io"
	"time"
)

// ArmWatchdog starts a timer that, if it fires before the matching Disarm,
// aborts the connection and closes its byte channel — unwedging a blocked
// read exactly as a language with pthread cancellation would cancel it
// (§9 Design Notes). A target language without cancellation support can
// always fall back to this close-the-descriptor trick.
func (c *Connection) ArmWatchdog(d time.Duration) {
	c.wdMu.Lock()
	defer c.wdMu.Unlock()

	if c.wdTimer != nil {
		c.wdTimer.Stop()
	}

	c.wdTimer = time.AfterFunc(d, func() {
		c.Abort()
	})
}

// DisarmWatchdog cancels any pending watchdog timer; the server is then
// allowed to wait forever for the next request (§4.2).
func (c *Connection) DisarmWatchdog() {
	c.wdMu.Lock()
	defer c.wdMu.Unlock()

	if c.wdTimer != nil {
		c.wdTimer.Stop()
		c.wdTimer = nil
	}
}

// ReadByte reads exactly one byte from the connection's channel.
func (c *Connection) ReadByte() (byte, error) {
	var b [1]byte
	if _, e := io.ReadFull(c.Channel, b[:]); e != nil {
		return 0, e
	}
	return b[0], nil
}

// ReadN reads exactly n bytes from the connection's channel.
func (c *Connection) ReadN(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, e := io.ReadFull(c.Channel, b); e != nil {
		return nil, e
	}
	return b, nil
}

// Write writes b in full to the connection's channel.
func (c *Connection) Write(b []byte) error {
	_, e := c.Channel.Write(b)
	return e
}
