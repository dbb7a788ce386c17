package redirect

import (
	"fmt"
	"slices"
	"strings"
)

// Statuses are the redirect tokens accepted on input.
var Statuses = []string{"301", "permanent", "302", "temporary", "temp", "redirect"}

// NormalizeToken maps an input status to the keyword the dialect expects.
func NormalizeToken(d Dialect, status string) (string, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !slices.Contains(Statuses, status) {
		return "", fmt.Errorf("%w: %q, must be one of: %s", ErrInvalidStatus, status, strings.Join(Statuses, ", "))
	}
	switch d {
	case Apache:
		if status == "temporary" || status == "redirect" {
			return "temp", nil
		}
	case Nginx:
		switch status {
		case "301":
			return "permanent", nil
		case "302", "temporary", "temp":
			return "redirect", nil
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidServer, d)
	}
	return status, nil
}
