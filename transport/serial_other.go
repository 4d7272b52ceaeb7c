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

//go:build !linux

package transport

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// openSerialDevice/configureSerial on non-Linux platforms: the standard
// speed-setting API has no path for the NABU's non-standard 111860 bps, so
// only FallbackBaud (115200) and other standard rates are honored; callers
// asking for NativeBaud transparently fall back per OpenSerial's retry.
func openSerialDevice(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR, 0)
}

func configureSerial(f *os.File, baud, stopBits int, rtscts bool) error {
	std, ok := standardBaud(baud)
	if !ok {
		return fmt.Errorf("transport: non-standard baud %d unsupported on this platform", baud)
	}

	fd := int(f.Fd())
	t, e := unix.IoctlGetTermios(fd, unix.TIOCGETA)
	if e != nil {
		return e
	}

	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB
	t.Cflag |= unix.CS8 | unix.CLOCAL | unix.CREAD

	if stopBits == 2 {
		t.Cflag |= unix.CSTOPB
	}
	if rtscts {
		t.Cflag |= unix.CRTSCTS
	} else {
		t.Cflag &^= unix.CRTSCTS
	}

	t.Ispeed = std
	t.Ospeed = std

	return unix.IoctlSetTermios(fd, unix.TIOCSETA, t)
}

func standardBaud(baud int) (uint64, bool) {
	switch baud {
	case 9600:
		return unix.B9600, true
	case 19200:
		return unix.B19200, true
	case 38400:
		return unix.B38400, true
	case 57600:
		return unix.B57600, true
	case 115200:
		return unix.B115200, true
	default:
		return 0, false
	}
}
