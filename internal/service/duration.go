package service

import (
	"strconv"
	"strings"

	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

// parseDurationMinutes reads a class duration such as "45min", "45 min" or "45".
func parseDurationMinutes(raw string) (int, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.TrimSpace(strings.TrimSuffix(value, "min"))

	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 {
		return 0, appErrors.Clone(appErrors.ErrInvalidInput, "invalid class duration "+strconv.Quote(raw))
	}
	return minutes, nil
}
