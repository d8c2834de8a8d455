package codec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

type compressedCodec struct {
	inner Codec
}

// Compressed wraps inner so its output is gzip-compressed and base64-armoured
// before hitting storage. Decode rejects payloads that are not valid
// base64-wrapped gzip rather than guessing at their shape.
func Compressed(inner Codec) Codec {
	if inner == nil {
		inner = JSON()
	}
	return compressedCodec{inner: inner}
}

func (c compressedCodec) Encode(envelope Envelope) (string, error) {
	plain, err := c.inner.Encode(envelope)
	if err != nil {
		return "", err
	}

	var buffer bytes.Buffer
	writer := gzip.NewWriter(&buffer)
	if _, err := writer.Write([]byte(plain)); err != nil {
		return "", fmt.Errorf("codec: compress envelope: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("codec: compress envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buffer.Bytes()), nil
}

func (c compressedCodec) Decode(raw string) (Envelope, error) {
	compressed, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return Envelope{}, fmt.Errorf("codec: decode base64 payload: %w", err)
	}
	reader, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return Envelope{}, fmt.Errorf("codec: open compressed payload: %w", err)
	}
	plain, err := io.ReadAll(reader)
	if err != nil {
		return Envelope{}, fmt.Errorf("codec: decompress payload: %w", err)
	}
	if err := reader.Close(); err != nil {
		return Envelope{}, fmt.Errorf("codec: decompress payload: %w", err)
	}
	return c.inner.Decode(string(plain))
}
