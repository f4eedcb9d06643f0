// Package wire implements the length-prefixed framing used for every
// exchange between the server and its clients.
//
// A frame is a fixed 64-byte header carrying the payload length as decimal
// ASCII padded right with spaces, followed by exactly that many payload
// bytes. Payloads are either UTF-8 text (control codes, usernames,
// sentences, submissions) or an opaque binary structure; the framing layer
// does not distinguish between the two.
package wire

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// HeaderSize is the fixed width of the length header in bytes.
const HeaderSize = 64

// Send writes payload to conn as a single frame. The header and payload go
// out in one Write call so that concurrent senders on the same connection
// cannot interleave partial frames.
func Send(conn io.Writer, payload []byte) error {
	frame := make([]byte, HeaderSize+len(payload))
	n := copy(frame, strconv.Itoa(len(payload)))
	for i := n; i < HeaderSize; i++ {
		frame[i] = ' '
	}
	copy(frame[HeaderSize:], payload)
	if _, err := conn.Write(frame); err != nil {
		return errors.Wrapf(ErrConnectionClosed, "write frame: %v", err)
	}
	return nil
}

// SendText frames and writes a UTF-8 text payload.
func SendText(conn io.Writer, text string) error {
	return Send(conn, []byte(text))
}

// Receive blocks until one full frame has been read from conn and returns
// its payload. A header that does not parse as a non-negative decimal
// integer is discarded and the header read retried; length-then-payload is
// strictly sequential per connection, so this resynchronizes on the next
// frame rather than hiding corruption. A short read in either phase means
// the peer closed the connection.
func Receive(conn io.Reader) ([]byte, error) {
	header := make([]byte, HeaderSize)
	for {
		if _, err := io.ReadFull(conn, header); err != nil {
			return nil, errors.Wrapf(ErrConnectionClosed, "read frame header: %v", err)
		}
		length, err := strconv.Atoi(strings.TrimRight(string(header), " "))
		if err != nil || length < 0 {
			continue
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(conn, payload); err != nil {
			return nil, errors.Wrapf(ErrConnectionClosed, "read frame payload: %v", err)
		}
		return payload, nil
	}
}

// ReceiveText reads one frame and decodes its payload as UTF-8 text.
func ReceiveText(conn io.Reader) (string, error) {
	payload, err := Receive(conn)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
