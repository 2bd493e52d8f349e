// Package globmatch implements the glob syntax Cache.Keys requires:
// `*`, `?`, `[abc]`, `[!abc]`. This is Redis KEYS/SCAN syntax, not
// path.Match's. In particular `[!abc]` is negation rather than
// `[^abc]`, so the standard library matcher cannot be reused for the
// in-memory driver; the Redis driver needs no matcher of its own
// since Redis natively accepts this syntax.
package globmatch

// Match reports whether name satisfies pattern.
func Match(pattern, name string) bool {
	return match([]rune(pattern), []rune(name))
}

func match(pattern, name []rune) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 0 && pattern[0] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 0 {
				return true
			}
			for i := 0; i <= len(name); i++ {
				if match(pattern, name[i:]) {
					return true
				}
			}
			return false

		case '?':
			if len(name) == 0 {
				return false
			}
			pattern = pattern[1:]
			name = name[1:]

		case '[':
			end := indexRune(pattern, ']')
			if end < 0 {
				if len(name) == 0 || name[0] != '[' {
					return false
				}
				pattern = pattern[1:]
				name = name[1:]
				continue
			}
			if len(name) == 0 {
				return false
			}
			class := pattern[1:end]
			negate := false
			if len(class) > 0 && class[0] == '!' {
				negate = true
				class = class[1:]
			}
			if containsRune(class, name[0]) == negate {
				return false
			}
			pattern = pattern[end+1:]
			name = name[1:]

		default:
			if len(name) == 0 || name[0] != pattern[0] {
				return false
			}
			pattern = pattern[1:]
			name = name[1:]
		}
	}
	return len(name) == 0
}

func indexRune(rs []rune, target rune) int {
	for i, r := range rs {
		if r == target {
			return i
		}
	}
	return -1
}

func containsRune(rs []rune, target rune) bool {
	for _, r := range rs {
		if r == target {
			return true
		}
	}
	return false
}
