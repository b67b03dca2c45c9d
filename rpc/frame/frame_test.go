package frame

import (
	"bufio"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	h := Header{ServiceName: "CacheService", MethodName: "Get", ArgsSize: 5}
	payload := []byte("hello")

	encoded := EncodeFrame(h, payload)

	r := bufio.NewReader(bytes.NewReader(encoded))
	decoded, err := DecodeFrame(r)
	require.NoError(t, err)

	assert.Equal(t, h, decoded.Header)
	assert.Equal(t, payload, decoded.Payload)
}

func TestDecodeFrameEmptyPayload(t *testing.T) {
	h := Header{ServiceName: "UserService", MethodName: "Login", ArgsSize: 0}

	encoded := EncodeFrame(h, nil)
	r := bufio.NewReader(bytes.NewReader(encoded))

	decoded, err := DecodeFrame(r)
	require.NoError(t, err)
	assert.Equal(t, h, decoded.Header)
	assert.Empty(t, decoded.Payload)
}

// partialReader trickles bytes through Read one at a time, simulating a TCP
// stream that delivers a frame split across many reads.
type partialReader struct {
	buf []byte
}

func (p *partialReader) Read(b []byte) (int, error) {
	if len(p.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(b, p.buf[:1])
	p.buf = p.buf[1:]
	return n, nil
}

func TestDecodeFrameAcrossPartialReads(t *testing.T) {
	h := Header{ServiceName: "CacheService", MethodName: "BatchGet", ArgsSize: 20}
	payload := bytes.Repeat([]byte{0xAB}, 20)
	encoded := EncodeFrame(h, payload)

	r := bufio.NewReader(&partialReader{buf: encoded})
	decoded, err := DecodeFrame(r)
	require.NoError(t, err)

	assert.Equal(t, h, decoded.Header)
	assert.Equal(t, payload, decoded.Payload)
}

func TestDecodeFrameMultipleFramesOnOneConnection(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(EncodeFrame(Header{ServiceName: "A", MethodName: "M1", ArgsSize: 3}, []byte("one")))
	buf.Write(EncodeFrame(Header{ServiceName: "B", MethodName: "M2", ArgsSize: 3}, []byte("two")))

	r := bufio.NewReader(&buf)

	f1, err := DecodeFrame(r)
	require.NoError(t, err)
	assert.Equal(t, "M1", f1.Header.MethodName)
	assert.Equal(t, []byte("one"), f1.Payload)

	f2, err := DecodeFrame(r)
	require.NoError(t, err)
	assert.Equal(t, "M2", f2.Header.MethodName)
	assert.Equal(t, []byte("two"), f2.Payload)
}

func TestDecodeFrameTruncatedHeaderReturnsError(t *testing.T) {
	h := Header{ServiceName: "CacheService", MethodName: "Get", ArgsSize: 5}
	encoded := EncodeFrame(h, []byte("hello"))

	// Cut off in the middle of the header.
	truncated := encoded[:3]
	r := bufio.NewReader(bytes.NewReader(truncated))

	_, err := DecodeFrame(r)
	assert.Error(t, err)
}

// TestDecodeFrameOverPipe feeds DecodeFrame from an io.Pipe written one byte
// at a time by a separate goroutine, closer to how the server sees bytes
// trickle in off a socket.
func TestDecodeFrameOverPipe(t *testing.T) {
	pr, pw := io.Pipe()

	h := Header{ServiceName: "CacheService", MethodName: "Set", ArgsSize: 4}
	payload := []byte("abcd")
	encoded := EncodeFrame(h, payload)

	go func() {
		for _, b := range encoded {
			_, _ = pw.Write([]byte{b})
			time.Sleep(time.Microsecond)
		}
		_ = pw.Close()
	}()

	r := bufio.NewReader(pr)
	decoded, err := DecodeFrame(r)
	require.NoError(t, err)
	assert.Equal(t, h, decoded.Header)
	assert.Equal(t, payload, decoded.Payload)
}
