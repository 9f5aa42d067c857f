package jsonscan

import (
	"bytes"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"
)

// DuplicateStrictness controls duplicate key handling in detection helpers.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// Duplicate describes one repeated object key.
type Duplicate struct {
	Path string // JSON Pointer of the object holding the key.
	Key  string
}

// Pointer returns the JSON Pointer of the duplicated member.
func (d Duplicate) Pointer() string { return d.Path + "/" + escape(d.Key) }

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	path         string
	nextIndex    int
}

// DetectDuplicateKeys scans JSON text for repeated object keys.
// With DupIgnore nothing is scanned. With DupError scanning stops at the first
// duplicate. Malformed input is not reported here; the engine owns parse errors.
func DetectDuplicateKeys(data []byte, onDup DuplicateStrictness) []Duplicate {
	if onDup == DupIgnore {
		return nil
	}
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var dups []Duplicate
	var stack []frame

	// childPath returns the pointer for the value about to be read.
	childPath := func(key string) string {
		if len(stack) == 0 {
			return ""
		}
		top := &stack[len(stack)-1]
		if top.kind == kindArray {
			p := top.path + "/" + strconv.Itoa(top.nextIndex)
			top.nextIndex++
			return p
		}
		return top.path + "/" + escape(key)
	}
	var pendingKey string
	valueDone := func() {
		if len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.kind == kindObject && !top.expectingKey {
				top.expectingKey = true
			}
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			// io.EOF or a syntax error; either way the scan is over.
			break
		}
		switch v := tok.(type) {
		case j.Delim:
			switch v {
			case '{':
				p := childPath(pendingKey)
				stack = append(stack, frame{kind: kindObject, keys: make(map[string]struct{}), expectingKey: true, path: p})
			case '[':
				p := childPath(pendingKey)
				stack = append(stack, frame{kind: kindArray, path: p})
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				valueDone()
			}
		case string:
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.kind == kindObject && top.expectingKey {
					if _, ok := top.keys[v]; ok {
						dups = append(dups, Duplicate{Path: top.path, Key: v})
						if onDup == DupError {
							return dups
						}
					}
					top.keys[v] = struct{}{}
					top.expectingKey = false
					pendingKey = v
					continue
				}
			}
			childPath(pendingKey)
			valueDone()
		default:
			childPath(pendingKey)
			valueDone()
		}
	}
	return dups
}

func escape(tok string) string {
	if !strings.ContainsAny(tok, "~/") {
		return tok
	}
	return strings.ReplaceAll(strings.ReplaceAll(tok, "~", "~0"), "/", "~1")
}
