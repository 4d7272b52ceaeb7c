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

//go:build linux

package transport

import (
	"os"

	"golang.org/x/sys/unix"
)

func openSerialDevice(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY, 0)
}

// configureSerial applies raw mode plus the requested stop-bit count. For
// the NABU's non-standard NativeBaud, it goes through the BOTHER/termios2
// ioctl path; standard rates use the usual Bxxx constants via unix.Termios.
func configureSerial(f *os.File, baud, stopBits int, rtscts bool) error {
	fd := int(f.Fd())

	t, e := unix.IoctlGetTermios(fd, unix.TCGETS)
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

	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	if std, ok := standardBaud(baud); ok {
		t.Cflag = (t.Cflag &^ unix.CBAUD) | std
		t.Ispeed, t.Ospeed = std, std
		if e = unix.IoctlSetTermios(fd, unix.TCSETS, t); e != nil {
			return e
		}
		return nil
	}

	// Non-standard rate (the NABU's 111860 bps): BOTHER + explicit speed,
	// set via termios2 rather than the plain termios ioctl.
	t.Cflag = (t.Cflag &^ unix.CBAUD) | unix.BOTHER
	t.Ispeed = uint32(baud)
	t.Ospeed = uint32(baud)

	t2 := unix.Termios2{
		Iflag:  t.Iflag,
		Oflag:  t.Oflag,
		Cflag:  t.Cflag,
		Lflag:  t.Lflag,
		Line:   t.Line,
		Cc:     t.Cc,
		Ispeed: t.Ispeed,
		Ospeed: t.Ospeed,
	}

	return unix.IoctlSetTermios2(fd, unix.TCSETS2, &t2)
}

func standardBaud(baud int) (uint32, bool) {
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
