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

import "fmt"

// NativeBaud is the NABU's native UART rate: (3579540/2)/16.
const NativeBaud = 111860

// FallbackBaud is used when the host cannot apply NativeBaud.
const FallbackBaud = 115200

// SerialProfile describes the requested line configuration; StopBits
// defaults to 2 because the NABU's UART can lose sync at 1 stop bit under
// sustained bursts (§4.2).
type SerialProfile struct {
	Device      string
	Baud        int // 0 = try NativeBaud, fall back to FallbackBaud
	StopBits    int // 1 or 2; 0 defaults to 2
	RTSCTS      bool
}

// OpenSerial opens p.Device in raw mode (no canonicalization, no echo, no
// signals), 8 data bits, no parity, CLOCAL-equivalent, applying p's baud
// and stop-bit profile. The platform-specific ioctl path (BOTHER/termios2
// on Linux for the non-standard NativeBaud, the standard speed-setting API
// elsewhere) lives in serial_linux.go / serial_other.go.
func OpenSerial(p SerialProfile) (*Connection, error) {
	if p.StopBits == 0 {
		p.StopBits = 2
	}

	baud := p.Baud
	if baud == 0 {
		baud = NativeBaud
	}

	f, e := openSerialDevice(p.Device)
	if e != nil {
		return nil, e
	}

	if e = configureSerial(f, baud, p.StopBits, p.RTSCTS); e != nil {
		if baud != FallbackBaud {
			if e2 := configureSerial(f, FallbackBaud, p.StopBits, p.RTSCTS); e2 == nil {
				baud = FallbackBaud
				e = nil
			}
		}
		if e != nil {
			_ = f.Close()
			return nil, fmt.Errorf("transport: configure serial %s: %w", p.Device, e)
		}
	}

	c := New(KindSerial, p.Device, f)
	c.Baud = baud
	c.StopBits = p.StopBits
	c.FlowControl = p.RTSCTS

	return c, nil
}
