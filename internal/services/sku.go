package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// GenerateSKU builds "<CAT>-<last 6 digits of epoch ms>-<000-999>". Collisions
// are possible and are left to the store's unique index to reject.
func GenerateSKU(category string, now time.Time, random int) string {
	prefix := category
	if utf8.RuneCountInString(prefix) > 3 {
		prefix = string([]rune(prefix)[:3])
	}
	return fmt.Sprintf("%s-%06d-%03d",
		strings.ToUpper(prefix),
		now.UnixMilli()%1_000_000,
		random%1000,
	)
}
