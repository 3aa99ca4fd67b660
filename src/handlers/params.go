package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"foodie/src/places"
	"foodie/src/types"
)

// params collects request fields from the query string and, when present,
// a JSON object body. Body fields win over query fields.
type params map[string]string

func readParams(r *http.Request) (params, error) {
	p := params{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			p[k] = v[0]
		}
	}
	if r.Body == nil || r.ContentLength == 0 {
		return p, nil
	}

	var body map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return p, nil
		}
		return nil, fmt.Errorf("%w: request body: %v", types.ErrInvalidInput, err)
	}
	for k, v := range body {
		switch val := v.(type) {
		case nil:
		case string:
			p[k] = val
		case json.Number:
			p[k] = val.String()
		case bool:
			p[k] = strconv.FormatBool(val)
		default:
			return nil, fmt.Errorf("%w: %s must be a string or number", types.ErrInvalidInput, k)
		}
	}
	return p, nil
}

func (p params) require(names ...string) error {
	var missing []string
	for _, n := range names {
		if strings.TrimSpace(p[n]) == "" {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", types.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// miles parses a finite, non-negative distance small enough to convert to
// a radius in meters.
func (p params) miles(name string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(p[name]), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative number", types.ErrInvalidInput, name)
	}
	if v > places.MaxRadiusMiles {
		return 0, fmt.Errorf("%w: %s must be at most %.0f", types.ErrInvalidInput, name, places.MaxRadiusMiles)
	}
	return v, nil
}

func (p params) positiveInt(name string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(p[name]))
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", types.ErrInvalidInput, name)
	}
	return v, nil
}
