package codec

import (
	"strings"
	"testing"
)

type sample struct {
	Key  string `json:"key" yaml:"key"`
	Val  int    `json:"val" yaml:"val"`
	Done bool   `json:"done,omitempty" yaml:"done,omitempty"`
}

func TestJSONDecodeClassification(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind Kind
	}{
		{"truncated document", `[{"key": "a", "val`, KindDataCorrupted},
		{"garbage bytes", "\x00\x01\x02", KindDataCorrupted},
		{"wrong value type", `[{"key": "a", "val": "not a number"}]`, KindTypeMismatch},
		{"undeclared field", `[{"key": "a", "val": 1, "extra": true}]`, KindKeyUnknown},
		{"null document", `null`, KindValueMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []sample
			err := JSON{}.Decode([]byte(tt.data), &rows)
			if err == nil {
				t.Fatal("Decode succeeded, want error")
			}
			de := AsDecodeError(err)
			if de == nil {
				t.Fatalf("error %v is not a *DecodeError", err)
			}
			if de.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", de.Kind, tt.kind)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := []sample{{Key: "a", Val: 1}, {Key: "b", Val: 2, Done: true}}
	data, err := JSON{}.Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("Encode output missing trailing newline")
	}
	var out []sample
	if err := (JSON{}).Decode(data, &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestYAMLDecodeClassification(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind Kind
	}{
		{"bad indentation", "- key: a\n   val: [", KindDataCorrupted},
		{"wrong value type", "- key: a\n  val: [1, 2]\n", KindTypeMismatch},
		{"undeclared field", "- key: a\n  val: 1\n  extra: true\n", KindKeyUnknown},
		{"null document", "null\n", KindValueMissing},
		{"empty document", "", KindValueMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []sample
			err := YAML{}.Decode([]byte(tt.data), &rows)
			if err == nil {
				t.Fatal("Decode succeeded, want error")
			}
			de := AsDecodeError(err)
			if de == nil {
				t.Fatalf("error %v is not a *DecodeError", err)
			}
			if de.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", de.Kind, tt.kind)
			}
		})
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	in := []sample{{Key: "a", Val: 1}}
	data, err := YAML{}.Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var out []sample
	if err := (YAML{}).Decode(data, &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(out) != 1 || out[0] != in[0] {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestExt(t *testing.T) {
	if got := (JSON{}).Ext(); got != "json" {
		t.Errorf("JSON Ext() = %q", got)
	}
	if got := (YAML{}).Ext(); got != "yaml" {
		t.Errorf("YAML Ext() = %q", got)
	}
}
