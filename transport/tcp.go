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
	"fmt"
	"net"
)

// Listener wraps a net.Listener as a Connection of KindTCPListener: it has
// no byte channel, only an accept source. The listen backlog is not set
// here; net.Listen uses the operating system's default.
type Listener struct {
	*Connection
	ln net.Listener
}

// ListenTCP creates a TCP listener on port across the network families
// requested ("tcp", "tcp4", or "tcp6").
func ListenTCP(network string, port int) (*Listener, error) {
	if network == "" {
		network = "tcp"
	}

	ln, e := net.Listen(network, fmt.Sprintf(":%d", port))
	if e != nil {
		return nil, e
	}

	return &Listener{
		Connection: New(KindTCPListener, ln.Addr().String(), nil),
		ln:         ln,
	}, nil
}

// Accept blocks until a client connects, disables Nagle (TCP_NODELAY) on
// the accepted socket, and records the numeric peer address as the
// connection name.
func (l *Listener) Accept() (*Connection, error) {
	conn, e := l.ln.Accept()
	if e != nil {
		return nil, e
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}

	return New(KindTCPAccepted, conn.RemoteAddr().String(), conn), nil
}

// Close stops accepting new connections.
func (l *Listener) Close() error {
	return l.ln.Close()
}
