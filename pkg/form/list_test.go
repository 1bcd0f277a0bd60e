package form

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestList_AppendAndRemoveAreCopies(t *testing.T) {
	base := NewList("a", "b")
	grown := base.Append("c")
	if base.Len() != 2 || grown.Len() != 3 {
		t.Fatalf("append mutated receiver: %v %v", base.Items(), grown.Items())
	}

	shrunk, ok := grown.RemoveAt(0)
	if !ok {
		t.Fatalf("remove failed")
	}
	if diff := cmp.Diff([]string{"b", "c"}, shrunk.Items()); diff != "" {
		t.Fatalf("remove mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, grown.Items()); diff != "" {
		t.Fatalf("remove mutated receiver (-want +got):\n%s", diff)
	}

	same, ok := shrunk.RemoveAt(5)
	if ok || same.Len() != 2 {
		t.Fatalf("out of range remove changed the list")
	}
	if _, ok := same.At(-1); ok {
		t.Fatalf("At(-1) should fail")
	}
}
