package mockdata

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/okian/rehabplan/internal/domain/aggregate"
	"github.com/okian/rehabplan/internal/domain/eligibility"
	"github.com/okian/rehabplan/internal/domain/model"
	"github.com/okian/rehabplan/internal/domain/types"
	"github.com/okian/rehabplan/pkg/logger"
)

// ErrMismatch reports that the service disagrees with the written dataset.
var ErrMismatch = errors.New("service does not match generated data")

// Verify checks a running service against ds: per-protocol session counts
// in the aggregate, and a score-ordered recommendation with no
// contraindicated protocol in it.
func Verify(ctx context.Context, cfg Config, ds Dataset) error {
	cfg = cfg.withDefaults()
	client := newHTTPClient(cfg.Timeout)

	if err := checkServiceHealth(ctx, client, cfg.BaseURL); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	base := cfg.BaseURL + "/patients/" + url.PathEscape(ds.Patient.ID)

	var agg aggregate.PatientAggregate
	if err := client.GetJSON(ctx, base+"/aggregates", &agg); err != nil {
		return err
	}
	if err := verifyAggregate(agg, ds); err != nil {
		return err
	}

	var rec types.Recommendation
	if err := client.GetJSON(ctx, base+"/recommendations", &rec); err != nil {
		return err
	}
	if err := verifyRecommendation(rec, ds); err != nil {
		return err
	}

	if cfg.Verbose {
		for _, sp := range rec.Top(3) {
			logger.Get().Info(ctx, "top protocol",
				logger.Int("rank", sp.Rank),
				logger.ProtocolID(sp.Protocol.ID),
				logger.Float64("score", sp.Score),
			)
		}
	}
	logger.Get().Info(ctx, "result verification completed", logger.PatientID(ds.Patient.ID))
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	resp, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return err
	}
	// Any 200 is healthy; the body is Prometheus text.
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

func verifyAggregate(agg aggregate.PatientAggregate, ds Dataset) error {
	if len(agg.Conditions) > 0 {
		return fmt.Errorf("%w: %d data-quality conditions, first %s", ErrMismatch, len(agg.Conditions), agg.Conditions[0].Kind)
	}
	for _, p := range ds.Protocols {
		want := ds.SessionsFor(p.ID)
		series, _ := agg.Protocol(p.ID)
		if got := len(series.Sessions); got != want {
			return fmt.Errorf("%w: protocol %s has %d sessions, want %d", ErrMismatch, p.ID, got, want)
		}
	}
	return nil
}

func verifyRecommendation(rec types.Recommendation, ds Dataset) error {
	eligible := eligibility.Filter(ds.Protocols, ds.Patient.Tags)
	if len(rec.Ranked) != len(eligible) {
		return fmt.Errorf("%w: %d protocols ranked, want %d", ErrMismatch, len(rec.Ranked), len(eligible))
	}
	for i, sp := range rec.Ranked {
		if !slices.ContainsFunc(eligible, func(p model.Protocol) bool { return p.ID == sp.Protocol.ID }) {
			return fmt.Errorf("%w: contraindicated protocol %s was ranked", ErrMismatch, sp.Protocol.ID)
		}
		if i > 0 && sp.Score > rec.Ranked[i-1].Score {
			return fmt.Errorf("%w: rank %d scores above rank %d", ErrMismatch, i+1, i)
		}
	}
	return nil
}
