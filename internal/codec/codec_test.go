package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFromErrorClassified(t *testing.T) {
	err := &Error{Kind: KindInvalidArgument, Message: "bad input", Details: map[string]any{"field": "name"}}
	doc := FromError(err)
	if doc.Kind != KindInvalidArgument || doc.Message != "bad input" {
		t.Fatalf("unexpected doc: %+v", doc)
	}
	if doc.Details == nil {
		t.Fatalf("expected details carried through")
	}
}

func TestFromErrorWrappedClassified(t *testing.T) {
	inner := &Error{Kind: KindNotFound, Message: "no such thing"}
	wrapped := fmt.Errorf("running action: %w", inner)
	doc := FromError(wrapped)
	if doc.Kind != KindNotFound || doc.Message != "no such thing" {
		t.Fatalf("expected wrapped classification, got %+v", doc)
	}
}

func TestFromErrorPlainDefaultsToInternal(t *testing.T) {
	doc := FromError(errors.New("boom"))
	if doc.Kind != KindInternal || doc.Message != "boom" {
		t.Fatalf("unexpected doc: %+v", doc)
	}
	doc = FromError(nil)
	if doc.Kind != KindInternal {
		t.Fatalf("nil error should map to internal, got %+v", doc)
	}
}

func TestFromErrorEmptyKindDefaultsToInternal(t *testing.T) {
	doc := FromError(&Error{Message: "unclassified"})
	if doc.Kind != KindInternal {
		t.Fatalf("expected internal kind, got %q", doc.Kind)
	}
}

func TestMarshalLineFraming(t *testing.T) {
	line, err := MarshalLine(map[string]any{"count": 2})
	if err != nil {
		t.Fatalf("marshal line: %v", err)
	}
	if !strings.HasSuffix(string(line), "\n") {
		t.Fatalf("expected newline-terminated line, got %q", line)
	}
	if strings.Count(string(line), "\n") != 1 {
		t.Fatalf("expected exactly one newline, got %q", line)
	}

	var decoded map[string]any
	if err := json.Unmarshal(line, &decoded); err != nil {
		t.Fatalf("line is not independently parseable: %v", err)
	}
	if decoded["count"].(float64) != 2 {
		t.Fatalf("unexpected decoded line: %#v", decoded)
	}

	if _, err := MarshalLine(func() {}); err == nil {
		t.Fatalf("expected marshal error for unencodable value")
	}
}

func TestErrorDocOmitsEmptyOptionalFields(t *testing.T) {
	payload, err := json.Marshal(ErrorDoc{Kind: KindInternal, Message: "boom"})
	if err != nil {
		t.Fatalf("marshal doc: %v", err)
	}
	if strings.Contains(string(payload), "stack") || strings.Contains(string(payload), "details") {
		t.Fatalf("expected optional fields omitted, got %s", payload)
	}
}
