package aggregate_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/rehabplan/internal/domain/aggregate"
	"github.com/okian/rehabplan/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var monday = time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC)

func at(days, hours int) time.Time {
	return monday.AddDate(0, 0, days).Add(time.Duration(hours) * time.Hour)
}

func TestWeekStart(t *testing.T) {
	Convey("Given timestamps across a week", t, func() {
		So(aggregate.WeekStart(at(0, 10)), ShouldEqual, monday)
		So(aggregate.WeekStart(at(6, 23)), ShouldEqual, monday)
		So(aggregate.WeekStart(at(7, 0)), ShouldEqual, monday.AddDate(0, 0, 7))
		So(aggregate.WeekStart(at(-1, 12)), ShouldEqual, monday.AddDate(0, 0, -7))
	})
}

func TestEWMA(t *testing.T) {
	Convey("Given a single observation", t, func() {
		So(aggregate.EWMA([]float64{0.42}, 0.3), ShouldResemble, []float64{0.42})
	})

	Convey("Given a short series", t, func() {
		e := aggregate.EWMA([]float64{1, 0, 1}, 0.5)
		So(e[1], ShouldAlmostEqual, 0.5, 1e-12)
		So(e[2], ShouldAlmostEqual, 0.75, 1e-12)
	})

	Convey("Given a constant series after a spike", t, func() {
		values := []float64{1}
		for i := 0; i < 200; i++ {
			values = append(values, 0.25)
		}
		e := aggregate.EWMA(values, aggregate.DefaultAlpha)
		So(math.Abs(e[len(e)-1]-0.25), ShouldBeLessThan, 1e-9)
	})

	Convey("Given smoothing factors", t, func() {
		So(aggregate.ValidateAlpha(1), ShouldBeNil)
		So(errors.Is(aggregate.ValidateAlpha(0), model.ErrValidation), ShouldBeTrue)
		So(errors.Is(aggregate.ValidateAlpha(1.1), model.ErrValidation), ShouldBeTrue)
	})
}

func samplePatient() model.Patient {
	return model.Patient{
		ID: "P001",
		Prescriptions: []model.Prescription{
			{ID: "RX1", ProtocolID: "PR1", StartDate: monday, EndDate: at(13, 0), Weekday: "Monday", PrescribedDuration: 30},
			{ID: "RX2", ProtocolID: "PR2", StartDate: monday, EndDate: at(6, 0), PrescribedDuration: 20},
		},
		Sessions: []model.Session{
			{ID: "S2", ProtocolID: "PR1", PrescriptionID: "RX1", Timestamp: at(7, 9), Duration: 30, DifficultyModulator: 0.6, PerformanceScore: 0.8},
			{ID: "S1", ProtocolID: "PR1", PrescriptionID: "RX1", Timestamp: at(0, 9), Duration: 15, DifficultyModulator: 0.4, PerformanceScore: 0.6},
			{ID: "S3", ProtocolID: "PR2", PrescriptionID: "RX2", Timestamp: at(2, 9), Duration: 40, DifficultyModulator: 0.5, PerformanceScore: 0.9},
			{ID: "S4", ProtocolID: "PR3", PrescriptionID: "RX9", Timestamp: at(3, 9), Duration: 10, DifficultyModulator: 0.5, PerformanceScore: 0.7},
			{ID: "S1", ProtocolID: "PR1", PrescriptionID: "RX1", Timestamp: at(0, 9), Duration: 15, DifficultyModulator: 0.4, PerformanceScore: 0.6},
		},
	}
}

func TestPatient(t *testing.T) {
	Convey("Given a patient log", t, func() {
		agg, err := aggregate.Patient(samplePatient(), 0.5)
		So(err, ShouldBeNil)

		Convey("Then each protocol gets a time-ordered series", func() {
			So(agg.Protocols, ShouldHaveLength, 3)
			s, ok := agg.Protocol("PR1")
			So(ok, ShouldBeTrue)
			So(s.Sessions[0].ID, ShouldEqual, "S1")
			So(s.Adherence, ShouldResemble, []float64{0.5, 1})
			So(s.DifficultyChange[0], ShouldEqual, 0)
			So(s.DifficultyChange[1], ShouldAlmostEqual, 0.2, 1e-9)
			So(s.Latest.Adherence, ShouldAlmostEqual, 0.75, 1e-9)
			So(s.Latest.Performance, ShouldAlmostEqual, 0.7, 1e-9)
			So(s.Latest.DifficultyChange, ShouldAlmostEqual, 0.1, 1e-9)
			So(s.TotalAdherence, ShouldAlmostEqual, 0.75, 1e-9)
		})

		Convey("Then a single session yields its own values", func() {
			s, _ := agg.Protocol("PR2")
			So(s.Latest.Adherence, ShouldEqual, 1)
			So(s.Latest.Performance, ShouldEqual, 0.9)
			So(s.Latest.DifficultyChange, ShouldEqual, 0)
		})

		Convey("Then orphans and duplicates are reported", func() {
			kinds := map[model.ConditionKind]string{}
			for _, c := range agg.Conditions {
				kinds[c.Kind] = c.Subject
			}
			So(kinds[model.ConditionOrphanSession], ShouldEqual, "S4")
			So(kinds[model.ConditionDuplicateSession], ShouldEqual, "S1")

			s, _ := agg.Protocol("PR3")
			So(s.Latest.Adherence, ShouldEqual, 0)
		})

		Convey("Then prescriptions appear in every week they span", func() {
			So(agg.Weeks, ShouldHaveLength, 2)
			So(agg.Weeks[0].Start, ShouldEqual, monday)
			So(agg.Weeks[0].Prescriptions, ShouldHaveLength, 2)
			So(agg.Weeks[1].Prescriptions, ShouldHaveLength, 1)
		})

		Convey("Then sessions land in their week and orphans stay out", func() {
			So(agg.Weeks[0].Sessions, ShouldHaveLength, 2)
			So(agg.Weeks[1].Sessions, ShouldHaveLength, 1)
		})

		Convey("Then weekly quality compares performed and prescribed time", func() {
			q := agg.Weeks[0].Quality
			// RX1 once on Monday, RX2 daily for seven days.
			So(q.PrescribedTime, ShouldEqual, 30+7*20)
			So(q.PerformedTime, ShouldEqual, 55)
			So(q.AverageAdherence, ShouldAlmostEqual, 0.75, 1e-9)
			So(q.TimeDeviation, ShouldAlmostEqual, (55.0-170.0)/170.0, 1e-9)
		})
	})

	Convey("Given a patient without sessions", t, func() {
		agg, err := aggregate.Patient(model.Patient{ID: "P002"}, aggregate.DefaultAlpha)
		So(err, ShouldBeNil)
		So(agg.Protocols, ShouldBeEmpty)
		_, ok := agg.Protocol("PR1")
		So(ok, ShouldBeFalse)
	})

	Convey("Given an invalid alpha", t, func() {
		_, err := aggregate.Patient(samplePatient(), 0)
		So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
	})
}

func TestWeeklyPrescriptionOrder(t *testing.T) {
	rx1 := model.Prescription{ID: "RX1", ProtocolID: "PR1", StartDate: monday, EndDate: at(6, 0), PrescribedDuration: 30}
	rx2 := model.Prescription{ID: "RX2", ProtocolID: "PR2", StartDate: at(7, 0), EndDate: at(13, 0), PrescribedDuration: 20}
	late := model.Session{ID: "S1", ProtocolID: "PR1", PrescriptionID: "RX1", Timestamp: at(8, 9), Duration: 30, DifficultyModulator: 0.5, PerformanceScore: 0.7}

	weeks := func(rxs ...model.Prescription) []aggregate.Week {
		agg, err := aggregate.Patient(model.Patient{ID: "P003", Prescriptions: rxs, Sessions: []model.Session{late}}, aggregate.DefaultAlpha)
		So(err, ShouldBeNil)
		So(agg.Conditions, ShouldBeEmpty)
		return agg.Weeks
	}

	Convey("Given a session logged after its prescription's last week", t, func() {
		Convey("When its prescription is listed first", func() {
			ws := weeks(rx1, rx2)
			So(ws, ShouldHaveLength, 2)
			So(ws[0].Sessions, ShouldBeEmpty)
			So(ws[1].Sessions, ShouldHaveLength, 1)
			So(ws[1].Sessions[0].ID, ShouldEqual, "S1")
		})

		Convey("When its prescription is listed last", func() {
			ws := weeks(rx2, rx1)
			So(ws, ShouldHaveLength, 2)
			So(ws[0].Sessions, ShouldBeEmpty)
			So(ws[1].Sessions, ShouldHaveLength, 1)
			So(ws[1].Quality.PerformedTime, ShouldEqual, 30.0)
		})
	})

	Convey("Given Weeks is read twice", t, func() {
		var w aggregate.Weekly
		w.Add(rx1, []model.Session{late})
		w.Add(rx2, nil)
		idx := model.Patient{Prescriptions: []model.Prescription{rx1, rx2}}.PrescriptionIndex()
		So(w.Weeks(idx)[1].Sessions, ShouldHaveLength, 1)
		So(w.Weeks(idx)[1].Sessions, ShouldHaveLength, 1)
	})
}
