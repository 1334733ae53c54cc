package main

import (
	"encoding/json"
	"strconv"
	"testing"
)

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func itoa(n int) string { return strconv.Itoa(n) }
