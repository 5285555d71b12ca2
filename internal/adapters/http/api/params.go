package api

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/rehabplan/internal/domain/model"
	"github.com/okian/rehabplan/internal/domain/plan"
	"github.com/okian/rehabplan/internal/domain/scoring"
	"github.com/okian/rehabplan/internal/domain/types"
)

// floatParam reads key from q, returning def when absent.
func floatParam(q url.Values, key string, def float64) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q must be a number", ErrBadRequest, key, raw)
	}
	return v, nil
}

func intParam(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q must be an integer", ErrBadRequest, key, raw)
	}
	if v < 0 {
		return 0, model.NewValidationError(key, raw, "must be a non-negative integer")
	}
	return v, nil
}

// weightsParam reads motor_weight and cognitive_weight over def.
func weightsParam(q url.Values, def scoring.Weights) (scoring.Weights, error) {
	motor, err := floatParam(q, "motor_weight", def.Motor)
	if err != nil {
		return scoring.Weights{}, err
	}
	cognitive, err := floatParam(q, "cognitive_weight", def.Cognitive)
	if err != nil {
		return scoring.Weights{}, err
	}
	w := scoring.Weights{Motor: motor, Cognitive: cognitive}
	return w, w.Validate()
}

// planParams reads the plan query parameters. Omitted values keep the
// service defaults.
func planParams(q url.Values, def scoring.Weights) (types.PlanRequest, error) {
	var req types.PlanRequest
	w, err := weightsParam(q, def)
	if err != nil {
		return req, err
	}
	req.Weights = &w

	if raw := q.Get("other"); raw != "" {
		if req.Other, err = plan.ParseOtherPolicy(raw); err != nil {
			return req, err
		}
	}
	if req.ItemsPerDay, err = intParam(q, "items_per_day"); err != nil {
		return req, err
	}
	if raw := q.Get("week_start"); raw != "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return req, fmt.Errorf("%w: week_start=%q must be a %s date", ErrBadRequest, raw, time.DateOnly)
		}
		req.WeekStart = t
	}
	return req, nil
}
