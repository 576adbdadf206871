package codec

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAML is a Codec that stores collections as YAML documents.
//
// Like JSON it decodes strictly: fields in the data that the record type
// does not declare fail with KindKeyUnknown.
type YAML struct{}

// Encode implements Codec.
func (YAML) Encode(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// Decode implements Codec.
func (YAML) Decode(data []byte, v any) error {
	trimmed := string(bytes.TrimSpace(data))
	if trimmed == "null" || trimmed == "~" {
		return &DecodeError{Kind: KindValueMissing, Err: errValueMissing}
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &DecodeError{Kind: KindValueMissing, Err: errValueMissing}
		}
		return &DecodeError{Kind: classifyYAML(err), Err: err}
	}
	return nil
}

// Ext implements Codec.
func (YAML) Ext() string {
	return "yaml"
}

func classifyYAML(err error) Kind {
	var typ *yaml.TypeError
	if errors.As(err, &typ) {
		for _, msg := range typ.Errors {
			if strings.Contains(msg, "not found in type") {
				return KindKeyUnknown
			}
		}
		return KindTypeMismatch
	}
	if strings.HasPrefix(err.Error(), "yaml:") {
		return KindDataCorrupted
	}
	return KindUnknown
}
