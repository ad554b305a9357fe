package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	reMDY = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})$`)
	reYMD = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
)

// NormalizeDate converts a free-form date string into ISO YYYY-MM-DD when a
// recognizable pattern is present. Patterns are tried in order: M/D/Y or
// M-D-Y with a 2-4 digit year, then already-ISO Y-M-D. Two-digit years below
// 50 expand to 20xx, 50-99 to 19xx. Unrecognized input is returned unchanged;
// the result is best effort and callers must not assume success.
func NormalizeDate(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}

	if m := reMDY.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			if year < 50 {
				year += 2000
			} else {
				year += 1900
			}
		}
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	}

	if m := reYMD.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	}

	return text
}
