package handler

import (
	"fmt"
	"net/http"
	"strconv"
)

// parseFloatParam reads a required float query parameter and checks it is
// within [min, max].
func parseFloatParam(r *http.Request, name string, min, max float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be between %g and %g", name, min, max)
	}
	return v, nil
}
