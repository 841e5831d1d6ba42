package datasets

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

func parseVersionNumber(version string) int {
	version = strings.ToLower(strings.TrimSpace(version))
	if !strings.HasPrefix(version, "v") {
		return 0
	}

	n, err := strconv.Atoi(version[1:])
	if err != nil || n < 0 {
		return 0
	}

	return n
}

func nextVersion(versions []string) string {
	max := 0
	for _, v := range versions {
		if n := parseVersionNumber(v); n > max {
			max = n
		}
	}

	return fmt.Sprintf("v%d", max+1)
}

func latestVersion(versions []string) string {
	if len(versions) == 0 {
		return ""
	}

	best := ""
	bestNum := 0
	for _, v := range versions {
		if n := parseVersionNumber(v); n > bestNum {
			bestNum = n
			best = v
		}
	}
	if len(best) > 0 {
		return best
	}

	sorted := append([]string(nil), versions...)
	sort.Strings(sorted)

	return sorted[len(sorted)-1]
}
