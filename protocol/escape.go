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

// Escape doubles every ESCAPE byte in buf and appends the result to dst,
// returning the extended slice. Used only on server->client traffic. The
// output length is len(buf) plus the number of ESCAPE bytes in buf.
func Escape(dst, buf []byte) []byte {
	for _, b := range buf {
		if b == ESCAPE {
			dst = append(dst, ESCAPE, ESCAPE)
		} else {
			dst = append(dst, b)
		}
	}
	return dst
}

// Unescape collapses doubled ESCAPE bytes in buf, appending the result to
// dst. It is the inverse of Escape and exists primarily for tests proving
// the round-trip law; the server itself never decodes its own output.
func Unescape(dst, buf []byte) []byte {
	for i := 0; i < len(buf); i++ {
		dst = append(dst, buf[i])
		if buf[i] == ESCAPE && i+1 < len(buf) && buf[i+1] == ESCAPE {
			i++
		}
	}
	return dst
}
