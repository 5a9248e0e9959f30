package service

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"warden/models"
)

// durationPattern matches the compact giveaway duration form: a whole number
// followed by a single unit. No fractions, no combined units.
var durationPattern = regexp.MustCompile(`^(\d+)([mhd])$`)

// ParseDuration parses a compact duration spec like "30m", "2h" or "3d".
// Anything else fails with models.ErrInvalidDuration.
func ParseDuration(spec string) (time.Duration, error) {
	matches := durationPattern.FindStringSubmatch(spec)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidDuration, spec)
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidDuration, spec)
	}

	switch matches[2] {
	case "m":
		return time.Duration(value) * time.Minute, nil
	case "h":
		return time.Duration(value) * time.Hour, nil
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	}

	return 0, fmt.Errorf("%w: %q", models.ErrInvalidDuration, spec)
}
