package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/rehabplan/internal/adapters/repository"
	"github.com/okian/rehabplan/internal/domain/model"
	"github.com/okian/rehabplan/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func seedSQLStore(t *testing.T, path string) *repository.SQLStore {
	t.Helper()
	ctx := context.Background()
	s, err := repository.OpenSQLStore(ctx, path, repository.WithSQLLogger(logger.Named("sqlstore-test")))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })

	for _, id := range []string{"P002", "P001"} {
		if err := s.SavePatient(ctx, fixturePatient(id)); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range []model.Protocol{
		fixtureProtocol("PR200", model.CategoryMotor),
		fixtureProtocol("PR100", model.CategoryCognitive),
	} {
		if err := s.SaveProtocol(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SavePrescription(ctx, fixturePrescription("RX1", "P001", "PR200")); err != nil {
		t.Fatal(err)
	}
	for i, id := range []string{"S002", "S001"} {
		if err := s.SaveSession(ctx, fixtureSession(id, "P001", "RX1", "PR200", 7-7*i)); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestSQLStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an in-memory database", t, func() {
		s := seedSQLStore(t, ":memory:")

		Convey("Migrate is idempotent", func() {
			So(s.Migrate(ctx), ShouldBeNil)
		})

		Convey("Patient rows map onto the canonical entity", func() {
			p, err := s.Patient(ctx, "P001")
			So(err, ShouldBeNil)
			want := fixturePatient("P001")
			So(p.ClinicalScores, ShouldResemble, want.ClinicalScores)
			So(p.Demographics, ShouldResemble, want.Demographics)
			So(p.StrokeInfo.OnsetDate.Equal(want.StrokeInfo.OnsetDate), ShouldBeTrue)
			So(p.Tags, ShouldResemble, want.Tags)
			So(p.ClinicianNotes, ShouldEqual, want.ClinicianNotes)
		})

		Convey("Prescriptions keep their optional columns", func() {
			p, err := s.Patient(ctx, "P001")
			So(err, ShouldBeNil)
			So(p.Prescriptions, ShouldHaveLength, 1)
			rx := p.Prescriptions[0]
			So(rx.EndDate.Equal(monday.AddDate(0, 0, 13)), ShouldBeTrue)
			So(rx.DecisionScores["score"], ShouldEqual, 0.42)
			So(*rx.PrescribedDifficulty, ShouldEqual, 0.5)
		})

		Convey("Sessions are rebuilt from recordings in time order", func() {
			p, err := s.Patient(ctx, "P001")
			So(err, ShouldBeNil)
			So(p.Sessions, ShouldHaveLength, 2)
			So(p.Sessions[0].ID, ShouldEqual, "S001")
			So(p.Sessions[0].Duration, ShouldAlmostEqual, 18, 1e-9)
			So(p.Sessions[0].PerformanceScore, ShouldEqual, 0.75)
			So(p.Sessions[0].DifficultyModulator, ShouldEqual, 0.5)
		})

		Convey("Re-saving a session replaces its recordings", func() {
			sess := fixtureSession("S001", "P001", "RX1", "PR200", 0)
			sess.PerformanceScore = 0.25
			So(s.SaveSession(ctx, sess), ShouldBeNil)
			p, err := s.Patient(ctx, "P001")
			So(err, ShouldBeNil)
			So(p.Sessions, ShouldHaveLength, 2)
			So(p.Sessions[0].PerformanceScore, ShouldEqual, 0.25)
		})

		Convey("Protocols keep insertion order across updates", func() {
			updated := fixtureProtocol("PR200", model.CategoryBalanced)
			So(s.SaveProtocol(ctx, updated), ShouldBeNil)
			ps, err := s.Protocols(ctx)
			So(err, ShouldBeNil)
			So(ps, ShouldHaveLength, 2)
			So(ps[0].ID, ShouldEqual, "PR200")
			So(ps[0].Category, ShouldEqual, model.CategoryBalanced)
			So(ps[1].ID, ShouldEqual, "PR100")
		})

		Convey("Unknown IDs are not found", func() {
			_, err := s.Patient(ctx, "P404")
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			_, err = s.Protocol(ctx, "PR404")
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
		})

		Convey("All patients load in ID order", func() {
			all, err := s.Patients(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 2)
			So(all[0].ID, ShouldEqual, "P001")
			So(all[1].Sessions, ShouldBeEmpty)
		})

		Convey("Invalid entities are refused on write", func() {
			bad := fixtureSession("S009", "P001", "RX1", "PR200", 1)
			bad.PerformanceScore = 2
			So(errors.Is(s.SaveSession(ctx, bad), model.ErrValidation), ShouldBeTrue)
		})
	})

	Convey("Given a database file", t, func() {
		path := filepath.Join(t.TempDir(), "db", "rehab.db")
		_ = seedSQLStore(t, path)

		Convey("A reopened store sees the same data", func() {
			s, err := repository.OpenSQLStore(ctx, path)
			So(err, ShouldBeNil)
			defer s.Close()
			ids, err := s.PatientIDs(ctx)
			So(err, ShouldBeNil)
			So(ids, ShouldResemble, []string{"P001", "P002"})
		})
	})
}
