// Package codec serializes full collections of records to and from bytes.
//
// A collection file is exactly one serialized snapshot of the ordered
// collection: no header, no versioning metadata. Decode failures are
// classified into kinds so callers can log them uniformly while degrading
// to an absent collection.
package codec

import (
	"errors"
	"fmt"
)

// Codec encodes and decodes a full collection snapshot.
type Codec interface {
	// Encode serializes v, typically a slice of records.
	Encode(v any) ([]byte, error)
	// Decode deserializes data into v, typically a pointer to a slice.
	// Failures are returned as *DecodeError.
	Decode(data []byte, v any) error
	// Ext returns the file extension for this codec, without the dot.
	Ext() string
}

// Kind classifies a decode failure.
type Kind string

const (
	// KindKeyUnknown means the data contains a field the record type
	// does not declare.
	KindKeyUnknown Kind = "key_unknown"
	// KindDataCorrupted means the bytes are not well-formed for the codec.
	KindDataCorrupted Kind = "data_corrupted"
	// KindTypeMismatch means a value's type does not match the record type.
	KindTypeMismatch Kind = "type_mismatch"
	// KindValueMissing means the data decoded to no value at all
	// (e.g. a lone null document).
	KindValueMissing Kind = "value_missing"
	// KindUnknown covers everything else.
	KindUnknown Kind = "unknown"
)

// DecodeError wraps a deserialization failure with its classification.
type DecodeError struct {
	Kind Kind
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed (%s): %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// AsDecodeError returns the *DecodeError in err's chain, or nil.
func AsDecodeError(err error) *DecodeError {
	var de *DecodeError
	if errors.As(err, &de) {
		return de
	}
	return nil
}

var errValueMissing = errors.New("document decoded to no value")
