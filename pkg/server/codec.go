package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// codec frames requests and responses on the IPC streams.
type codec interface {
	// Decode reads the next request. io.EOF ends the session; a
	// *malformedError leaves the stream usable.
	Decode(req *Request) error
	Encode(v any) error
}

type malformedError struct {
	err error
}

func (e *malformedError) Error() string { return fmt.Sprintf("malformed request: %v", e.err) }

func (e *malformedError) Unwrap() error { return e.err }

func newCodec(name string, r io.Reader, w io.Writer) (codec, error) {
	switch name {
	case "", CodecJSON:
		return &jsonCodec{reader: bufio.NewReader(r), writer: w}, nil
	case CodecMsgpack:
		return &msgpackCodec{dec: msgpack.NewDecoder(r), enc: msgpack.NewEncoder(w)}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// jsonCodec speaks newline-delimited JSON; blank lines are skipped.
type jsonCodec struct {
	reader *bufio.Reader
	writer io.Writer
}

func (c *jsonCodec) Decode(req *Request) error {
	for {
		line, err := c.reader.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			if err != nil {
				return err
			}
			continue
		}
		*req = Request{}
		if uerr := json.Unmarshal(line, req); uerr != nil {
			return &malformedError{uerr}
		}
		return nil
	}
}

func (c *jsonCodec) Encode(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = c.writer.Write(data)
	return err
}

// msgpackCodec speaks a stream of msgpack maps. A malformed message cannot be
// skipped, so decode failures end the session.
type msgpackCodec struct {
	dec *msgpack.Decoder
	enc *msgpack.Encoder
}

func (c *msgpackCodec) Decode(req *Request) error {
	*req = Request{}
	return c.dec.Decode(req)
}

func (c *msgpackCodec) Encode(v any) error {
	return c.enc.Encode(v)
}
