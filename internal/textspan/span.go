// Package textspan reconstructs substrings from byte offsets reported by the
// native scanner and splitter. libpg_query reports offsets into the UTF-8
// encoding of the input, never character positions, so all slicing here is
// byte slicing. Go strings are already UTF-8 byte sequences, which makes the
// correct implementation also the natural one, but the offset math still has
// to tolerate corrupt values.
package textspan

// Slice returns the substring of text covering the byte range [start, end).
// Out-of-range or inverted offsets yield "" rather than panicking: the
// surrounding token or statement metadata may still be usable even when the
// reported offsets are not.
func Slice(text string, start, end int) string {
	if start < 0 || end < start || end > len(text) {
		return ""
	}
	return text[start:end]
}

// SliceLen returns the substring of text starting at the byte offset loc with
// byte length n. Split results arrive as location+length pairs.
func SliceLen(text string, loc, n int) string {
	if n < 0 {
		return ""
	}
	return Slice(text, loc, loc+n)
}
