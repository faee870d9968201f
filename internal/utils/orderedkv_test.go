package utils

import (
	"encoding/json"
	"testing"
)

func TestOrderedKVMapRoundTrip(t *testing.T) {
	input := `{"zeta":1,"alpha":2,"mike":3}`

	var om OrderedKVMap[int]
	if err := json.Unmarshal([]byte(input), &om); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	keys := om.Keys()
	want := []string{"zeta", "alpha", "mike"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("key %d: expected %s got %s", i, k, keys[i])
		}
	}

	out, err := json.Marshal(om)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != input {
		t.Fatalf("round trip mismatch: %s", out)
	}
}

func TestOrderedKVMapDuplicateKey(t *testing.T) {
	var om OrderedKVMap[int]
	err := json.Unmarshal([]byte(`{"a":1,"a":2}`), &om)
	if err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestOrderedKVMapRejectsArray(t *testing.T) {
	var om OrderedKVMap[int]
	if err := json.Unmarshal([]byte(`[1,2]`), &om); err == nil {
		t.Fatalf("expected error for non-object")
	}
}
