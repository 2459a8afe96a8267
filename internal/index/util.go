package index

import (
	"strings"
	"time"
)

func nowUnix() int64 { return time.Now().Unix() }

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func equalFold(a, b string) bool { return strings.EqualFold(a, b) }
