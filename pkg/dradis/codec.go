package dradis

import (
	"sort"
	"strings"
)

// FieldBag maps field names to their string values. The set of keys is
// configured, not fixed: vulnerabilities use the operator-supplied field
// list, content blocks accept arbitrary keys.
type FieldBag map[string]string

// EncodeFields serializes a field bag into the Dradis text storage format.
// Each field becomes a section:
//
//	#[Name]#\r\nvalue\r\n\r\n
//
// concatenated with no separator, including the trailing CRLF CRLF after
// the final field. The delimiters are a wire contract the Dradis server
// parses; they must be reproduced byte-for-byte.
//
// Fields named in order are emitted first, in that order; remaining keys
// follow sorted, so the output is deterministic for any bag. Pass nil
// order to encode a bag alone (content blocks).
func EncodeFields(bag FieldBag, order []string) string {
	var b strings.Builder
	seen := make(map[string]bool, len(bag))

	for _, name := range order {
		value, ok := bag[name]
		if !ok {
			continue
		}
		writeSection(&b, name, value)
		seen[name] = true
	}

	rest := make([]string, 0, len(bag))
	for name := range bag {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		writeSection(&b, name, bag[name])
	}

	return b.String()
}

func writeSection(b *strings.Builder, name, value string) {
	b.WriteString("#[")
	b.WriteString(name)
	b.WriteString("]#\r\n")
	b.WriteString(value)
	b.WriteString("\r\n\r\n")
}
