// Package bookmatch decides whether catalog search results belong to a
// given author or title.
package bookmatch

import "strings"

// Normalize 去掉首尾空白并统一大小写（Unicode case folding 的简化版：ToLower）
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Equal 任一侧为空白即不相等
func Equal(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb
}

// AnyEqual 列表中是否有元素与 want 规范化后相等
func AnyEqual(list []string, want string) bool {
	for _, s := range list {
		if Equal(s, want) {
			return true
		}
	}
	return false
}

// Contains 子串匹配。"Go" 会命中 "Google"，误报来源之一，
// 只用于排序提示，不用于过滤。
func Contains(haystack, needle string) bool {
	n := Normalize(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Normalize(haystack), n)
}
