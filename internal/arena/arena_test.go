package arena

import (
	"reflect"
	"testing"
)

func TestPushEmpty(t *testing.T) {
	var vec []int
	vec, ref, ok := Push(vec, SliceRef[int]{}, 1, 2, 3)
	if !ok {
		t.Fatal("expected ok")
	}
	if ref.Start != 0 || ref.Len != 3 {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if !reflect.DeepEqual(View(vec, ref), []int{1, 2, 3}) {
		t.Fatalf("unexpected view: %v", View(vec, ref))
	}
}

func TestPushTrivial(t *testing.T) {
	vec := []int{1, 2, 3}
	ref := SliceRef[int]{Start: 0, Len: 3}
	vec, ref, ok := Push(vec, ref, 4)
	if !ok {
		t.Fatal("expected ok")
	}
	if ref.Start != 0 || ref.Len != 4 {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if !reflect.DeepEqual(View(vec, ref), []int{1, 2, 3, 4}) {
		t.Fatalf("unexpected view: %v", View(vec, ref))
	}
}

func TestPushBeginning(t *testing.T) {
	// Appending to a ref that points at the beginning of a vector that
	// already has more elements after it must copy to the tail.
	vec := []int{1, 2, 3, 4, 5}
	ref := SliceRef[int]{Start: 0, Len: 2}
	vec, ref, ok := Push(vec, ref, 9)
	if !ok {
		t.Fatal("expected ok")
	}
	if ref.Start != 5 || ref.Len != 3 {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if !reflect.DeepEqual(View(vec, ref), []int{1, 2, 9}) {
		t.Fatalf("unexpected view: %v", View(vec, ref))
	}
	// Original elements untouched.
	if !reflect.DeepEqual(vec[:5], []int{1, 2, 3, 4, 5}) {
		t.Fatalf("original vector mutated: %v", vec[:5])
	}
}

func TestPushJustAtEnd(t *testing.T) {
	vec := []int{1, 2, 3}
	ref := SliceRef[int]{Start: 1, Len: 2}
	vec, ref, ok := Push(vec, ref, 4)
	if !ok {
		t.Fatal("expected ok")
	}
	if ref.Start != 1 || ref.Len != 3 {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if !reflect.DeepEqual(View(vec, ref), []int{2, 3, 4}) {
		t.Fatalf("unexpected view: %v", View(vec, ref))
	}
}

func TestPushOutside(t *testing.T) {
	vec := []int{1, 2, 3}
	ref := SliceRef[int]{Start: 5, Len: 2}
	_, _, ok := Push(vec, ref, 4)
	if ok {
		t.Fatal("expected not ok for out-of-bounds ref")
	}
}

func TestPushStringAppendsBytes(t *testing.T) {
	var a []byte
	a, ref, ok := PushString(a, SliceRef[byte]{}, "hello")
	if !ok {
		t.Fatal("expected ok")
	}
	if ViewString(a, ref) != "hello" {
		t.Fatalf("got %q", ViewString(a, ref))
	}

	a, ref2, ok := PushString(a, SliceRef[byte]{}, "world")
	if !ok {
		t.Fatal("expected ok")
	}
	if ViewString(a, ref2) != "world" {
		t.Fatalf("got %q", ViewString(a, ref2))
	}
	// Original ref still resolves correctly.
	if ViewString(a, ref) != "hello" {
		t.Fatalf("first ref corrupted: %q", ViewString(a, ref))
	}
}
