package util

import (
	"reflect"
	"testing"
)

func TestDedupeNonEmptyStrings(t *testing.T) {
	got := DedupeNonEmptyStrings([]string{"a", "", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}

	if got := DedupeNonEmptyStrings(nil); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}
