package parser

// This file implements the tolerant, key-order-independent scanner
// used to pull individual fields out of a single descriptor object
// without a general JSON decoder: the wire format never nests past
// one level and the slave has no RAM to spare on a tree decoder.

// findKey returns the index just after the colon that follows
// "key" in buf, skipping whitespace, or -1 if key is not present as
// a quoted key.
func findKey(buf []byte, key string) int {
	needle := make([]byte, 0, len(key)+2)
	needle = append(needle, '"')
	needle = append(needle, key...)
	needle = append(needle, '"')

	for i := 0; i+len(needle) <= len(buf); i++ {
		if string(buf[i:i+len(needle)]) != string(needle) {
			continue
		}
		j := i + len(needle)
		for j < len(buf) && isSpace(buf[j]) {
			j++
		}
		if j >= len(buf) || buf[j] != ':' {
			continue
		}
		j++
		for j < len(buf) && isSpace(buf[j]) {
			j++
		}
		return j
	}
	return -1
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// extractInt reads an integer value for key, tolerating an optional
// surrounding pair of quotes and a leading '-'. Returns ok=false if
// the key is absent or the value is not a well-formed integer.
func extractInt(buf []byte, key string) (int, bool) {
	i := findKey(buf, key)
	if i < 0 {
		return 0, false
	}
	quoted := false
	if i < len(buf) && buf[i] == '"' {
		quoted = true
		i++
	}
	start := i
	if i < len(buf) && buf[i] == '-' {
		i++
	}
	digits := 0
	for i < len(buf) && isDigit(buf[i]) {
		i++
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if quoted {
		if i >= len(buf) || buf[i] != '"' {
			return 0, false
		}
	}
	neg := buf[start] == '-'
	v := 0
	for _, c := range buf[start:i] {
		if c == '-' {
			continue
		}
		v = v*10 + int(c-'0')
	}
	if neg {
		v = -v
	}
	return v, true
}

// extractString reads a quoted string value for key. Escaping is not
// supported by the wire format; the value runs up to the next '"'. Returns ok=false if the key is absent or not a
// quoted value.
func extractString(buf []byte, key string) (string, bool) {
	i := findKey(buf, key)
	if i < 0 || i >= len(buf) || buf[i] != '"' {
		return "", false
	}
	i++
	start := i
	for i < len(buf) && buf[i] != '"' {
		i++
	}
	if i >= len(buf) {
		return "", false
	}
	return string(buf[start:i]), true
}

// Token returns the "t" field of a descriptor object, e.g. to let a
// caller route a header object ("h") to ApplyHeader instead of Apply
// before it even looks well-formed enough to dispatch.
func Token(buf []byte) (string, bool) { return extractString(buf, "t") }

// looksWellFormed does a minimal shape check: a single brace pair
// with at least one colon inside. It is not a validator; individual
// extract calls are what actually determine usable fields.
func looksWellFormed(buf []byte) bool {
	trimmed := buf
	start, end := -1, -1
	for i, b := range trimmed {
		if b == '{' && start < 0 {
			start = i
		}
		if b == '}' {
			end = i
		}
	}
	if start < 0 || end < 0 || end < start {
		return false
	}
	for i := start; i <= end; i++ {
		if trimmed[i] == ':' {
			return true
		}
	}
	return false
}
