package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/rehabplan/internal/adapters/http/api"
	"github.com/okian/rehabplan/internal/domain/aggregate"
	"github.com/okian/rehabplan/internal/domain/model"
	"github.com/okian/rehabplan/internal/domain/plan"
	"github.com/okian/rehabplan/internal/domain/rollup"
	"github.com/okian/rehabplan/internal/domain/scoring"
	"github.com/okian/rehabplan/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDependencies struct {
	lastWeights scoring.Weights
	lastPlan    types.PlanRequest
	lastAlpha   float64
	failWith    error
}

func (m *mockDependencies) PatientIDs(context.Context) ([]string, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return []string{"P001", "P002"}, nil
}

func (m *mockDependencies) Recommend(_ context.Context, id string, w scoring.Weights) (types.Recommendation, error) {
	if id != "P001" {
		return types.Recommendation{}, model.NewNotFoundError("patient", id)
	}
	m.lastWeights = w
	return types.Recommendation{
		PatientID: id,
		Weights:   w,
		Ranked: []scoring.ScoredProtocol{
			{Protocol: model.Protocol{ID: "PR1"}, Rank: 1, Score: 0.9},
			{Protocol: model.Protocol{ID: "PR2"}, Rank: 2, Score: 0.4},
			{Protocol: model.Protocol{ID: "PR3"}, Rank: 3, Score: 0.1},
		},
	}, nil
}

func (m *mockDependencies) WeeklyPlan(_ context.Context, id string, req types.PlanRequest) (types.WeeklyPlan, error) {
	if id != "P001" {
		return types.WeeklyPlan{}, model.NewNotFoundError("patient", id)
	}
	m.lastPlan = req
	return types.WeeklyPlan{
		Recommendation: types.Recommendation{PatientID: id},
		WeekStart:      req.WeekStart,
		Plan:           plan.Build(nil),
	}, nil
}

func (m *mockDependencies) Aggregate(_ context.Context, id string, alpha float64) (aggregate.PatientAggregate, error) {
	if m.failWith != nil {
		return aggregate.PatientAggregate{}, m.failWith
	}
	if alpha > 1 {
		return aggregate.PatientAggregate{}, aggregate.ValidateAlpha(alpha)
	}
	m.lastAlpha = alpha
	return aggregate.PatientAggregate{PatientID: id, Alpha: alpha}, nil
}

func (m *mockDependencies) Weights() scoring.Weights { return scoring.DefaultWeights() }

func (m *mockDependencies) Protocols(context.Context) ([]model.Protocol, error) {
	return []model.Protocol{{ID: "PR1"}, {ID: "PR2"}}, nil
}

func (m *mockDependencies) Protocol(_ context.Context, id string) (model.Protocol, error) {
	if id != "PR1" {
		return model.Protocol{}, model.NewNotFoundError("protocol", id)
	}
	return model.Protocol{ID: id}, nil
}

func (m *mockDependencies) Rollup(_ context.Context, id string) (rollup.Summary, error) {
	if id != "PR1" {
		return rollup.Summary{}, model.NewNotFoundError("protocol", id)
	}
	return rollup.Summary{ProtocolID: id, SessionCount: 4, PatientCount: 2}, nil
}

func (m *mockDependencies) RollupAll(context.Context) ([]rollup.Summary, error) {
	return nil, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func get(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder, v any) {
	So(json.Unmarshal(w.Body.Bytes(), v), ShouldBeNil)
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("Then the health endpoint serves metrics", func() {
			w := get(mux, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint serves JSON", func() {
			w := get(mux, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]any
			decode(w, &stats)
			So(stats["started"], ShouldEqual, true)
			So(w.Header().Get("Cache-Control"), ShouldEqual, "no-store")
		})

		Convey("Then a failed request is counted against its endpoint", func() {
			So(get(mux, "/patients/P404/recommendations").Code, ShouldEqual, http.StatusNotFound)
			w := get(mux, "/healthz")
			So(w.Body.String(), ShouldContainSubstring, `component="http_recommendations"`)
		})

		Convey("Then unknown routes are not found", func() {
			So(get(mux, "/unknown").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then write methods are not allowed", func() {
			req := httptest.NewRequest(http.MethodPost, "/protocols", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestPatientEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When listing patients", func() {
			w := get(mux, "/patients")
			So(w.Code, ShouldEqual, http.StatusOK)
			var ids []string
			decode(w, &ids)
			So(ids, ShouldResemble, []string{"P001", "P002"})
		})

		Convey("When requesting recommendations with default weights", func() {
			w := get(mux, "/patients/P001/recommendations")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastWeights, ShouldResemble, scoring.DefaultWeights())
			var rec types.Recommendation
			decode(w, &rec)
			So(rec.Ranked, ShouldHaveLength, 3)
		})

		Convey("When requesting recommendations with weights and a limit", func() {
			w := get(mux, "/patients/P001/recommendations?motor_weight=1&cognitive_weight=0&limit=2")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastWeights, ShouldResemble, scoring.Weights{Motor: 1, Cognitive: 0})
			var rec types.Recommendation
			decode(w, &rec)
			So(rec.Ranked, ShouldHaveLength, 2)
		})

		Convey("When weights are malformed or negative", func() {
			So(get(mux, "/patients/P001/recommendations?motor_weight=abc").Code, ShouldEqual, http.StatusBadRequest)
			w := get(mux, "/patients/P001/recommendations?cognitive_weight=-1")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			var body map[string]string
			decode(w, &body)
			So(body["code"], ShouldEqual, "bad_request")
			So(body["message"], ShouldContainSubstring, "cognitive_weight")
		})

		Convey("When a parameter does not parse", func() {
			for _, path := range []string{
				"/patients/P001/recommendations?motor_weight=abc",
				"/patients/P001/plan?items_per_day=three",
				"/patients/P001/plan?week_start=19-02-2024",
			} {
				w := get(mux, path)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var body map[string]string
				decode(w, &body)
				So(body["code"], ShouldEqual, "bad_request")
				So(body["message"], ShouldStartWith, api.ErrBadRequest.Error())
			}
		})

		Convey("When the patient is unknown", func() {
			w := get(mux, "/patients/P404/recommendations")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When requesting a plan with options", func() {
			w := get(mux, "/patients/P001/plan?other=fill&items_per_day=3&week_start=2024-02-19")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastPlan.Other, ShouldEqual, plan.OtherFill)
			So(deps.lastPlan.ItemsPerDay, ShouldEqual, 3)
			So(deps.lastPlan.WeekStart, ShouldEqual, time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC))
			So(*deps.lastPlan.Weights, ShouldResemble, scoring.DefaultWeights())
		})

		Convey("When plan options are invalid", func() {
			So(get(mux, "/patients/P001/plan?other=spread").Code, ShouldEqual, http.StatusBadRequest)
			So(get(mux, "/patients/P001/plan?week_start=19-02-2024").Code, ShouldEqual, http.StatusBadRequest)
			So(get(mux, "/patients/P001/plan?items_per_day=-2").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When requesting aggregates", func() {
			So(get(mux, "/patients/P001/aggregates").Code, ShouldEqual, http.StatusOK)
			So(deps.lastAlpha, ShouldEqual, 0)

			So(get(mux, "/patients/P001/aggregates?alpha=0.5").Code, ShouldEqual, http.StatusOK)
			So(deps.lastAlpha, ShouldEqual, 0.5)
		})

		Convey("When alpha is out of range", func() {
			So(get(mux, "/patients/P001/aggregates?alpha=0").Code, ShouldEqual, http.StatusBadRequest)
			So(get(mux, "/patients/P001/aggregates?alpha=1.5").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the backend fails", func() {
			deps.failWith = errors.New("disk on fire")
			w := get(mux, "/patients/P001/aggregates")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(get(mux, "/patients").Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestProtocolEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("When listing the catalog", func() {
			w := get(mux, "/protocols")
			So(w.Code, ShouldEqual, http.StatusOK)
			var ps []model.Protocol
			decode(w, &ps)
			So(ps, ShouldHaveLength, 2)
		})

		Convey("When fetching one protocol", func() {
			So(get(mux, "/protocols/PR1").Code, ShouldEqual, http.StatusOK)
			So(get(mux, "/protocols/PR9").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When rolling up a protocol", func() {
			w := get(mux, "/protocols/PR1/rollup")
			So(w.Code, ShouldEqual, http.StatusOK)
			var sum rollup.Summary
			decode(w, &sum)
			So(sum.SessionCount, ShouldEqual, 4)
			So(get(mux, "/protocols/PR9/rollup").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When rolling up an empty population", func() {
			w := get(mux, "/rollup")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, "[]\n")
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a wrapped handler", t, func() {
		teapot := api.MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			w.WriteHeader(http.StatusOK)
		}, "teapot")
		plain := api.MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}, "plain")

		Convey("Then the status written by the handler reaches the client", func() {
			w := httptest.NewRecorder()
			teapot(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusTeapot)
		})

		Convey("Then a body without a header is a 200", func() {
			w := httptest.NewRecorder()
			plain(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, "ok")
		})
	})
}
