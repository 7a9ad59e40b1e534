package ads

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// slugSuffixBytes is the random suffix length keeping slugs unique.
const slugSuffixBytes = 4

// slugify lowercases the title and replaces runs of non-alphanumerics
// with single hyphens.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// newSlug builds a URL slug from the title with a random hex suffix.
func newSlug(title string) (string, error) {
	base := slugify(title)
	if base == "" {
		base = "ad"
	}
	if len(base) > 200 {
		base = base[:200]
	}
	buf := make([]byte, slugSuffixBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("ads: generate slug suffix: %w", err)
	}
	return base + "-" + hex.EncodeToString(buf), nil
}
