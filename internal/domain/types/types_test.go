package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/rehabplan/internal/domain/model"
	"github.com/okian/rehabplan/internal/domain/plan"
	"github.com/okian/rehabplan/internal/domain/scoring"
	types "github.com/okian/rehabplan/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func ranked(ids ...string) []scoring.ScoredProtocol {
	out := make([]scoring.ScoredProtocol, len(ids))
	for i, id := range ids {
		out[i] = scoring.ScoredProtocol{Protocol: model.Protocol{ID: id}, Rank: i + 1}
	}
	return out
}

func TestRecommendation(t *testing.T) {
	Convey("Given a recommendation", t, func() {
		rec := types.Recommendation{PatientID: "P001", Ranked: ranked("A", "B", "C")}

		Convey("When taking the top entries", func() {
			So(rec.Top(2), ShouldHaveLength, 2)
			So(rec.Top(2)[1].Protocol.ID, ShouldEqual, "B")
		})

		Convey("When the limit is out of range", func() {
			So(rec.Top(0), ShouldHaveLength, 3)
			So(rec.Top(10), ShouldHaveLength, 3)
		})
	})
}

func TestWeeklyPlanJSON(t *testing.T) {
	Convey("Given a weekly plan", t, func() {
		wp := types.WeeklyPlan{
			Recommendation: types.Recommendation{PatientID: "P001", Weights: scoring.DefaultWeights()},
			WeekStart:      time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC),
			Plan:           plan.Build(nil),
		}

		Convey("When encoding it", func() {
			raw, err := json.Marshal(wp)
			So(err, ShouldBeNil)

			var doc map[string]any
			So(json.Unmarshal(raw, &doc), ShouldBeNil)

			Convey("Then the recommendation fields are inlined", func() {
				So(doc["patient_id"], ShouldEqual, "P001")
				So(doc["week_start"], ShouldEqual, "2024-02-19T00:00:00Z")
				So(doc["plan"].(map[string]any)["days"], ShouldHaveLength, 7)
			})
		})
	})
}
