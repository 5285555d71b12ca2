package repository_test

import (
	"time"

	"github.com/okian/rehabplan/internal/domain/model"
	"github.com/okian/rehabplan/pkg/logger"
)

func init() {
	_ = logger.Init()
}

var monday = time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC)

func fixturePatient(id string) model.Patient {
	return model.Patient{
		ID:           id,
		Demographics: model.Demographics{Age: 64, Gender: "F", Handedness: "right", HeightCM: 168},
		StrokeInfo: model.StrokeInfo{
			Type:        "ischemic",
			Location:    "left MCA",
			PareticSide: "right",
			OnsetDate:   time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC),
		},
		ClinicalScores: model.ClinicalProfile{
			ARAT: model.ARAT{Grasp: 10, Grip: 6, Pinch: 8, GrossMovement: 5},
			MoCA: model.MoCA{
				Visuospatial: 3, Naming: 2, Memory: 4, Attention: 5,
				Language: 2, Abstraction: 1, DelayedRecall: 3, Orientation: 5,
			},
		},
		ClinicianNotes: "tolerates 20 minutes",
		Tags:           []string{"shoulder_pain"},
	}
}

func fixtureProtocol(id string, cat model.Category) model.Protocol {
	return model.Protocol{
		ID:                  id,
		Name:                "Protocol " + id,
		Category:            cat,
		DifficultyCognitive: model.TierLow,
		DifficultyMotor:     model.TierMid,
		MotorFeatures: model.MotorFeatures{
			Reaching:       true,
			RangeOfMotionH: model.TierMid,
			RangeOfMotionV: model.TierLow,
		},
		CognitiveFeatures: model.CognitiveFeatures{Attention: true},
		SafetyConstraints: model.SafetyConstraints{MaxDuration: 20},
	}
}

func fixturePrescription(id, patientID, protocolID string) model.Prescription {
	difficulty := 0.5
	return model.Prescription{
		ID:                   id,
		PatientID:            patientID,
		ProtocolID:           protocolID,
		StartDate:            monday,
		EndDate:              monday.AddDate(0, 0, 13),
		Weekday:              "Monday",
		PrescribedDuration:   20,
		DecisionScores:       map[string]float64{"score": 0.42},
		Explanation:          "rank 1, motor-led day",
		PrescribedDifficulty: &difficulty,
	}
}

func fixtureSession(id, patientID, rxID, protocolID string, day int) model.Session {
	return model.Session{
		ID:                  id,
		PatientID:           patientID,
		ProtocolID:          protocolID,
		PrescriptionID:      rxID,
		Timestamp:           monday.AddDate(0, 0, day).Add(10 * time.Hour),
		Duration:            18,
		DifficultyModulator: 0.5,
		PerformanceScore:    0.75,
	}
}
