// Package format renders kill times, dates and relative times the way the
// dashboard displays them. Nothing here reads the system clock; callers pass now.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DateLayout is the short US date used in kill tables, e.g. "Mar 4, 2025".
const DateLayout = "Jan 2, 2006"

// KillTime formats a duration in seconds as m:ss.s, e.g. 125.3 -> "2:05.3".
func KillTime(seconds float64) string {
	mins := int64(math.Floor(seconds / 60))
	secs := toFixed1(math.Mod(seconds, 60))
	if len(secs) < 4 {
		secs = strings.Repeat("0", 4-len(secs)) + secs
	}
	return fmt.Sprintf("%d:%s", mins, secs)
}

// toFixed1 formats v with one decimal. Exact halves round up, not to even.
func toFixed1(v float64) string {
	if q := v * 4; v >= 0 && q == math.Trunc(q) && int64(q)%2 != 0 {
		// v is an odd quarter: x.25 or x.75 sits exactly between two tenths.
		return strconv.FormatFloat(math.Ceil(v*10)/10, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// TimeAgo is the coarse relative time: "Just now", "12m ago", "3h 5m ago", "4d ago".
func TimeAgo(ts int64, now time.Time) string {
	secondsAgo := now.Unix() - ts
	if secondsAgo < 60 {
		return "Just now"
	}

	hours := floorDiv(secondsAgo, 3600)
	minutes := floorDiv(secondsAgo%3600, 60)

	if hours > 0 {
		if hours >= 24 {
			return fmt.Sprintf("%dd ago", floorDiv(hours, 24))
		}
		return fmt.Sprintf("%dh %dm ago", hours, minutes)
	}
	return fmt.Sprintf("%dm ago", minutes)
}

// TimeAgoDetailed drops zero components: "2d ago", "2d 3h ago", "1h ago", "1h 5m ago", "7m ago".
func TimeAgoDetailed(ts int64, now time.Time) string {
	secondsAgo := now.Unix() - ts

	days := floorDiv(secondsAgo, 86400)
	hours := floorDiv(secondsAgo%86400, 3600)
	minutes := floorDiv(secondsAgo%3600, 60)

	if days > 0 {
		if hours > 0 {
			return fmt.Sprintf("%dd %dh ago", days, hours)
		}
		return fmt.Sprintf("%dd ago", days)
	}
	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm ago", hours, minutes)
		}
		return fmt.Sprintf("%dh ago", hours)
	}
	return fmt.Sprintf("%dm ago", minutes)
}

// Date formats a unix timestamp with DateLayout in loc (UTC when nil).
func Date(ts int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(ts, 0).In(loc).Format(DateLayout)
}

// Enrage renders an enrage value with thousands separators.
func Enrage(n int) string {
	return humanize.Comma(int64(n))
}

// ThousandsLabel renders 15000 as "15k".
func ThousandsLabel(n int) string {
	return fmt.Sprintf("%.0fk", float64(n)/1000)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
