// Package frame implements the wire framing this RPC system uses: a
// varint-length-prefixed header followed by a raw payload. Unlike the
// original application's framing (a fixed-format protobuf header), the
// header here is itself a small varint-encoded structure — there is no
// external Codec dependency for it, since the header is intrinsic framing
// logic rather than application payload.
//
// Frame layout on the wire:
//
//	varint(header_len) | header_len bytes of header | payload (args_size bytes)
//
// Header layout:
//
//	varint(len(service_name)) | service_name bytes
//	varint(len(method_name))  | method_name bytes
//	varint(args_size)
package frame

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Header identifies which service/method a frame's payload targets, and how
// large that payload is.
type Header struct {
	ServiceName string
	MethodName  string
	ArgsSize    uint32
}

// Frame is a fully decoded wire frame: a header plus its payload bytes.
type Frame struct {
	Header  Header
	Payload []byte
}

// EncodeFrame serializes header and payload into a single wire frame.
func EncodeFrame(h Header, payload []byte) []byte {
	headerBuf := encodeHeader(h)

	lenBuf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(lenBuf, uint64(len(headerBuf)))

	out := make([]byte, 0, n+len(headerBuf)+len(payload))
	out = append(out, lenBuf[:n]...)
	out = append(out, headerBuf...)
	out = append(out, payload...)
	return out
}

func encodeHeader(h Header) []byte {
	buf := make([]byte, 0, len(h.ServiceName)+len(h.MethodName)+3*binary.MaxVarintLen64)
	buf = appendString(buf, h.ServiceName)
	buf = appendString(buf, h.MethodName)
	buf = appendUvarint(buf, uint64(h.ArgsSize))
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = appendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

// DecodeFrame reads a single frame from r, blocking until a complete frame
// has arrived (or the connection errors/closes). r must be a *bufio.Reader
// so that a frame split across multiple TCP reads is reassembled correctly
// instead of assuming one read yields one frame.
func DecodeFrame(r *bufio.Reader) (*Frame, error) {
	headerLen, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}

	headerBuf := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	header, err := decodeHeader(headerBuf)
	if err != nil {
		return nil, fmt.Errorf("decode frame header: %w", err)
	}

	payload := make([]byte, header.ArgsSize)
	if header.ArgsSize > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("read frame payload: %w", err)
		}
	}

	return &Frame{Header: *header, Payload: payload}, nil
}

func decodeHeader(buf []byte) (*Header, error) {
	br := bufio.NewReader(&sliceReader{buf})

	service, err := readString(br)
	if err != nil {
		return nil, fmt.Errorf("service_name: %w", err)
	}
	method, err := readString(br)
	if err != nil {
		return nil, fmt.Errorf("method_name: %w", err)
	}
	argsSize, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, fmt.Errorf("args_size: %w", err)
	}

	return &Header{ServiceName: service, MethodName: method, ArgsSize: uint32(argsSize)}, nil
}

func readString(r *bufio.Reader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// sliceReader adapts a byte slice to io.Reader for reuse of the varint
// readers against an in-memory header buffer.
type sliceReader struct {
	b []byte
}

func (s *sliceReader) Read(p []byte) (int, error) {
	if len(s.b) == 0 {
		return 0, io.EOF
	}
	n := copy(p, s.b)
	s.b = s.b[n:]
	return n, nil
}
