package util

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jgivc/causelist/internal/entity"
)

const (
	judgeMaxLen    = 40
	fileNamePrefix = "CauseList"
)

var (
	unsafeRegexp = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\p{Z}-]`)
)

func GetIDFromString(str *string) string {
	hasher := sha1.New()
	hasher.Write([]byte(*str))

	return hex.EncodeToString(hasher.Sum(nil))
}

// SanitizeJudge keeps letters, digits, underscore, whitespace and hyphen,
// then cuts the label to 40 runes. Whitespace is kept as is.
func SanitizeJudge(judge string) string {
	return Truncate(unsafeRegexp.ReplaceAllString(judge, ""), judgeMaxLen)
}

// CauseListFileName builds CauseList_{slug}_{judge}_{DD-MM-YYYY}.pdf.
func CauseListFileName(courtSlug, judge string, date time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s.pdf", fileNamePrefix, courtSlug, SanitizeJudge(judge), date.Format(entity.DateLayout))
}

// NormSpace collapses whitespace runs to a single space.
func NormSpace(s string) string { return strings.Join(strings.Fields(s), " ") }

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n])
}
