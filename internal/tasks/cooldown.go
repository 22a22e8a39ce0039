package tasks

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseCooldown parses a cooldown such as "90m", "12h" or "3d" into whole
// seconds. Besides the units accepted by time.ParseDuration, a trailing "d"
// means days.
func ParseCooldown(s string) (int64, error) {
	s = strings.TrimSpace(s)
	var d time.Duration
	if n, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid cooldown %q", s)
		}
		nanos := days * float64(24*time.Hour)
		if math.IsNaN(nanos) || nanos >= math.MaxInt64 {
			return 0, fmt.Errorf("cooldown %q is out of range", s)
		}
		d = time.Duration(nanos)
	} else {
		var err error
		d, err = time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid cooldown %q", s)
		}
	}
	secs := int64(d / time.Second)
	if secs < 1 {
		return 0, fmt.Errorf("cooldown %q must be at least one second", s)
	}
	return secs, nil
}
