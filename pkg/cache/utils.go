package cache

import "strings"

// GenerateKey joins a namespace and id parts with ':'.
func GenerateKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), ":")
}
