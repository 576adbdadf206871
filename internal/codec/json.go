package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// JSON is a Codec that stores collections as indented JSON.
//
// Decoding is strict: fields present in the data but absent from the record
// type are reported as KindKeyUnknown rather than silently dropped, so a
// schema drift between the file and the type is visible in logs.
type JSON struct{}

// Encode implements Codec.
func (JSON) Encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode implements Codec.
func (JSON) Decode(data []byte, v any) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return &DecodeError{Kind: KindValueMissing, Err: errValueMissing}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &DecodeError{Kind: classifyJSON(err), Err: err}
	}
	return nil
}

// Ext implements Codec.
func (JSON) Ext() string {
	return "json"
}

func classifyJSON(err error) Kind {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return KindDataCorrupted
	}
	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) {
		return KindTypeMismatch
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindDataCorrupted
	}
	// encoding/json reports unknown fields as a plain error.
	if strings.Contains(err.Error(), "unknown field") {
		return KindKeyUnknown
	}
	return KindUnknown
}
