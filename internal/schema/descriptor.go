package schema

// IsValidDescriptor reports whether s is a valid short name (descr):
// an ASCII letter followed by letters, digits or hyphens.
func IsValidDescriptor(s string) bool {
	if s == "" || !isLeadChar(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isDescrChar(s[i]) {
			return false
		}
	}
	return true
}

func isLeadChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isDescrChar(c byte) bool {
	return isLeadChar(c) || isDigit(c) || c == '-'
}
