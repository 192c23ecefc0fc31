package primitive

// TrimXMLWhitespace removes leading and trailing XML whitespace.
// It returns the original string when no trimming is needed.
func TrimXMLWhitespace(in string) string {
	start := 0
	end := len(in)
	for start < end && isXMLWhitespaceByte(in[start]) {
		start++
	}
	for end > start && isXMLWhitespaceByte(in[end-1]) {
		end--
	}
	if start == 0 && end == len(in) {
		return in
	}
	return in[start:end]
}

func isXMLWhitespaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
