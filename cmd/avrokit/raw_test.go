package main

import (
	"testing"
	"time"

	"github.com/reoring/avrokit/schema"
)

func TestToRaw_UnionOfMapAndRecord(t *testing.T) {
	s := schema.MustParse(`[
		{"type": "map", "values": "long"},
		{"type": "record", "name": "Stamp", "fields": [{"name": "at", "type": {"type": "long", "logicalType": "timestamp-millis"}}]}
	]`)
	at := time.UnixMilli(1700000000000).UTC()
	got, err := toRaw(s, map[string]any{"at": at})
	if err != nil {
		t.Fatalf("record branch: %v", err)
	}
	if m := got.(map[string]any); m["at"] != int64(1700000000000) {
		t.Fatalf("logical field must be normalized: %#v", got)
	}

	got, err = toRaw(s, map[string]any{"at": int64(1), "other": int64(2)})
	if err != nil {
		t.Fatalf("map branch: %v", err)
	}
	if m := got.(map[string]any); m["at"] != int64(1) || m["other"] != int64(2) {
		t.Fatalf("map values must pass through: %#v", got)
	}
}
