package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	model "github.com/okian/rehabplan/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleProfile() model.ClinicalProfile {
	return model.ClinicalProfile{
		ARAT: model.ARAT{Grasp: 12, Grip: 8, Pinch: 10, GrossMovement: 9},
		MoCA: model.MoCA{
			Visuospatial: 4, Naming: 3, Memory: 2, Attention: 5,
			Language: 2, Abstraction: 1, DelayedRecall: 3, Orientation: 6,
		},
	}
}

func TestClinicalProfile_Deficit(t *testing.T) {
	Convey("Given the reference intake profile", t, func() {
		p := sampleProfile()

		Convey("Then ARAT deficits follow (max - value) / max", func() {
			d := p.MotorDeficits()
			So(d[0], ShouldAlmostEqual, 1.0/3.0, 1e-9)
			So(d[1], ShouldAlmostEqual, 1.0/3.0, 1e-9)
			So(d[2], ShouldAlmostEqual, 8.0/18.0, 1e-9)
			So(d[3], ShouldEqual, 0)
		})

		Convey("Then MoCA deficits are in scoring order", func() {
			d := p.CognitiveDeficits()
			So(d[0], ShouldAlmostEqual, 0.6, 1e-9) // memory 2/5
			So(d[1], ShouldAlmostEqual, 1.0/6.0, 1e-9)
			So(d[7], ShouldEqual, 0) // orientation full marks
		})

		Convey("Then every deficit lies within [0, 1]", func() {
			for _, s := range model.MotorSubscales {
				So(p.Deficit(s), ShouldBeBetweenOrEqual, 0, 1)
			}
			for _, s := range model.CognitiveSubscales {
				So(p.Deficit(s), ShouldBeBetweenOrEqual, 0, 1)
			}
		})

		Convey("Then totals sum the subscales", func() {
			So(p.ARAT.TotalScore(), ShouldEqual, 39)
			So(p.MoCA.TotalScore(), ShouldEqual, 26)
		})

		Convey("Then unknown subscales have no deficit", func() {
			So(p.Deficit(model.Subscale("balance")), ShouldEqual, 0)
			So(model.MaxScore(model.Subscale("balance")), ShouldEqual, 0)
		})
	})

	Convey("Given boundary values", t, func() {
		Convey("A zero score is a full deficit", func() {
			p := model.ClinicalProfile{}
			So(p.Deficit(model.Grasp), ShouldEqual, 1)
			So(p.Deficit(model.Orientation), ShouldEqual, 1)
		})
	})
}

func TestClinicalProfile_Validate(t *testing.T) {
	Convey("Given ARAT construction", t, func() {
		Convey("When values are in range", func() {
			a, err := model.NewARAT(18, 12, 18, 9)
			So(err, ShouldBeNil)
			So(a.TotalScore(), ShouldEqual, model.ARATMax)
			So(model.ARATMax, ShouldEqual, 57.0)
		})

		Convey("When grasp exceeds its maximum", func() {
			_, err := model.NewARAT(19, 0, 0, 0)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)

			var verr *model.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Field, ShouldEqual, "ARAT.grasp")
		})

		Convey("When a value is negative", func() {
			_, err := model.NewARAT(0, -1, 0, 0)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})
	})

	Convey("Given MoCA construction", t, func() {
		Convey("When values are at their maxima", func() {
			m, err := model.NewMoCA(5, 3, 5, 6, 3, 2, 5, 6)
			So(err, ShouldBeNil)
			So(m.TotalScore(), ShouldEqual, model.MoCAMax)
			So(model.MoCAMax, ShouldEqual, 35.0)
		})

		Convey("When abstraction exceeds 2", func() {
			_, err := model.NewMoCA(0, 0, 0, 0, 0, 3, 0, 0)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})
	})

	Convey("Given a full profile", t, func() {
		_, err := model.NewClinicalProfile(sampleProfile().ARAT, model.MoCA{Orientation: 7})
		So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
	})
}

func TestClinicalProfile_JSON(t *testing.T) {
	Convey("Given a profile serialized to JSON", t, func() {
		p := sampleProfile()
		raw, err := json.Marshal(p)
		So(err, ShouldBeNil)

		Convey("Then decoding yields an equal value", func() {
			var back model.ClinicalProfile
			So(json.Unmarshal(raw, &back), ShouldBeNil)
			So(back, ShouldResemble, p)
		})
	})

	Convey("Given upper-case MoCA keys", t, func() {
		raw := `{"ARAT":{"grasp":1,"grip":2,"pinch":3,"gross_movement":4},
			"MoCA":{"VISUOSPATIAL":4,"NAMING":3,"MEMORY":2,"ATTENTION":5,
			"LANGUAGE":2,"ABSTRACTION":1,"DELAYED_RECALL":3,"ORIENTATION":6}}`
		var p model.ClinicalProfile
		So(json.Unmarshal([]byte(raw), &p), ShouldBeNil)
		So(p.MoCA.DelayedRecall, ShouldEqual, 3)
		So(p.Validate(), ShouldBeNil)
	})
}
