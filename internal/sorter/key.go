package sorter

import "strings"

// KeySeparator joins the two ids of a comparison key.
const KeySeparator = ","

const keyEscape = `\`

var keyEscaper = strings.NewReplacer(keyEscape, keyEscape+keyEscape, KeySeparator, keyEscape+KeySeparator)

// PairKey returns the decision cache key for the unordered pair (a, b).
//
// The ids are ordered lexicographically and joined with KeySeparator, so
// PairKey(a, b) == PairKey(b, a). Separators and backslashes inside an id
// are backslash-escaped, which keeps keys of distinct pairs distinct. Ids
// without either character produce the plain "a,b" form.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return keyEscaper.Replace(a) + KeySeparator + keyEscaper.Replace(b)
}

// SplitPairKey returns the two ids encoded in key.
// ok is false if key is not a well-formed pair key.
func SplitPairKey(key string) (a, b string, ok bool) {
	var (
		parts   []string
		cur     strings.Builder
		escaped bool
	)
	for _, r := range key {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case string(r) == keyEscape:
			escaped = true
		case string(r) == KeySeparator:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		return "", "", false
	}
	parts = append(parts, cur.String())
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// keyReferences reports whether key encodes a pair containing id.
func keyReferences(key, id string) bool {
	a, b, ok := SplitPairKey(key)
	if !ok {
		return false
	}
	return a == id || b == id
}
