package version

import (
	"fmt"
	"strconv"
	"strings"
)

// FirstVersion is assigned to the first version of a document, and is the
// recovery value when a prior version string cannot be parsed.
const FirstVersion = "1.0.0"

// nextVersionNumber derives the next "major.minor.patch" string from the
// previous one: the patch component is incremented, major and minor stay
// untouched. A previous string that is not exactly three non-negative
// integers resets to FirstVersion. That reset is explicit recovery policy,
// not an error.
func nextVersionNumber(prev string) string {
	major, minor, patch, ok := parseSemver(prev)
	if !ok {
		return FirstVersion
	}
	return fmt.Sprintf("%d.%d.%d", major, minor, patch+1)
}

func parseSemver(s string) (major, minor, patch int, ok bool) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := parseComponent(part)
		if err != nil {
			return 0, 0, 0, false
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], true
}

// parseComponent accepts plain decimal digits only; strconv.Atoi alone would
// admit signs and let "-1.0.0" survive the reset policy.
func parseComponent(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}
