package hook

import "strings"

// ExpandHookNames returns the hook names fired for tag, base first:
//
//	prefix_tag, prefix_c1_tag, ..., prefix_cn_tag
//
// An empty tag expands to nothing.
func ExpandHookNames(prefix, tag string, tokens []string) []string {
	if tag == "" {
		return nil
	}
	names := make([]string, 0, len(tokens)+1)
	names = append(names, FormatHook(prefix, tag, ""))
	for _, c := range tokens {
		if c == "" {
			continue
		}
		names = append(names, FormatHook(prefix, tag, c))
	}
	return names
}

// FormatHook builds "{prefix}_{tag}" or "{prefix}_{context}_{tag}".
func FormatHook(prefix, tag, context string) string {
	if context == "" {
		return prefix + "_" + tag
	}
	return prefix + "_" + context + "_" + tag
}

// SanitizeKey lowercases key and keeps only [a-z0-9_-].
func SanitizeKey(key string) string {
	key = strings.ToLower(key)
	var b strings.Builder
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
