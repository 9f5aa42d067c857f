package jsonscan

import "testing"

func TestDetectDuplicateKeys_NoDup(t *testing.T) {
	js := []byte(`{"a":1,"b":{"a":2},"c":[{"a":1},{"a":2}]}`)
	if dups := DetectDuplicateKeys(js, DupWarn); len(dups) != 0 {
		t.Fatalf("expected 0 duplicates, got %d: %v", len(dups), dups)
	}
}

func TestDetectDuplicateKeys_Root(t *testing.T) {
	dups := DetectDuplicateKeys([]byte(`{"a":1,"a":2}`), DupWarn)
	if len(dups) != 1 {
		t.Fatalf("expected 1 duplicate, got %v", dups)
	}
	if dups[0].Key != "a" || dups[0].Path != "" {
		t.Fatalf("unexpected duplicate %+v", dups[0])
	}
}

func TestDetectDuplicateKeys_NestedPath(t *testing.T) {
	js := []byte(`{"items":[{"x":1},{"x":1,"x":2}],"m/n":{"k":1,"k":2}}`)
	dups := DetectDuplicateKeys(js, DupWarn)
	if len(dups) != 2 {
		t.Fatalf("expected 2 duplicates, got %v", dups)
	}
	if dups[0].Path != "/items/1" {
		t.Fatalf("expected /items/1, got %q", dups[0].Path)
	}
	if dups[1].Path != "/m~1n" {
		t.Fatalf("expected /m~1n, got %q", dups[1].Path)
	}
}

func TestDetectDuplicateKeys_ErrorStopsEarly(t *testing.T) {
	dups := DetectDuplicateKeys([]byte(`{"a":1,"a":2,"b":1,"b":2}`), DupError)
	if len(dups) != 1 {
		t.Fatalf("expected scan to stop at first duplicate, got %v", dups)
	}
}

func TestDetectDuplicateKeys_IgnoreAndMalformed(t *testing.T) {
	if dups := DetectDuplicateKeys([]byte(`{"a":1,"a":2}`), DupIgnore); dups != nil {
		t.Fatalf("ignore must not scan, got %v", dups)
	}
	if dups := DetectDuplicateKeys([]byte(`{"a":`), DupError); len(dups) != 0 {
		t.Fatalf("malformed input must not report duplicates, got %v", dups)
	}
}

func TestDuplicate_Pointer(t *testing.T) {
	d := Duplicate{Path: "/a", Key: "b/c"}
	if got := d.Pointer(); got != "/a/b~1c" {
		t.Fatalf("unexpected pointer %q", got)
	}
}
