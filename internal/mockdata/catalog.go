package mockdata

import "github.com/okian/rehabplan/internal/domain/model"

// Catalog returns the sample protocol catalog written alongside mock
// patients. It covers every category so plans exercise both day kinds.
func Catalog() []model.Protocol {
	return []model.Protocol{
		{
			ID:                  "214",
			Name:                "Blobs",
			Description:         "Pop targets with a pinch while tracking moving blobs.",
			Category:            model.CategoryMotor,
			DifficultyCognitive: model.TierHigh,
			DifficultyMotor:     model.TierHigh,
			BodyTargets:         model.BodyTargets{Finger: 1},
			MotorFeatures:       model.MotorFeatures{Pinching: true, RangeOfMotionH: model.TierLow, RangeOfMotionV: model.TierLow},
			CognitiveFeatures: model.CognitiveFeatures{
				ProcessingSpeed: true, Attention: true, Coordination: true,
				MemoryWM: true, Math: true, DailyLivingActivity: true,
			},
			CognitiveDemand: 0.7,
			Gamification:    &model.Gamification{Type: "arcade", FeedbackModes: []string{"visual", "audio"}, DifficultyScaling: true},
			SafetyConstraints: model.SafetyConstraints{
				MaxDuration: 60, MaxDailyFrequency: 2,
			},
		},
		{
			ID:                  "223",
			Name:                "Twister",
			Description:         "Reach, grasp and rotate shapes into matching slots.",
			Category:            model.CategoryBalanced,
			DifficultyCognitive: model.TierHigh,
			DifficultyMotor:     model.TierHigh,
			BodyTargets:         model.BodyTargets{Finger: 1},
			MotorFeatures: model.MotorFeatures{
				Reaching: true, Grasping: true, Pinching: true,
				RangeOfMotionH: model.TierLow, RangeOfMotionV: model.TierLow,
			},
			CognitiveFeatures: model.CognitiveFeatures{
				ProcessingSpeed: true, Attention: true, Coordination: true,
				MemoryWM: true, DailyLivingActivity: true,
			},
			CognitiveDemand:   0.6,
			SafetyConstraints: model.SafetyConstraints{MaxDuration: 60},
		},
		{
			ID:                  "201",
			Name:                "Reach and Place",
			Description:         "Move cups across the table to marked targets.",
			Category:            model.CategoryMotor,
			DifficultyCognitive: model.TierLow,
			DifficultyMotor:     model.TierMid,
			BodyTargets:         model.BodyTargets{Arm: 1, Shoulder: 1},
			MotorFeatures: model.MotorFeatures{
				Reaching: true, Grasping: true,
				RangeOfMotionH: model.TierHigh, RangeOfMotionV: model.TierMid,
			},
			CognitiveDemand: 0.2,
			SafetyConstraints: model.SafetyConstraints{
				MaxDuration: 45, Contraindications: []string{"shoulder_subluxation"}, MinRestDays: 1,
			},
		},
		{
			ID:                  "205",
			Name:                "Grip Trainer",
			Description:         "Squeeze and turn a dynamometer handle on cue.",
			Category:            model.CategoryMotor,
			DifficultyCognitive: model.TierLow,
			DifficultyMotor:     model.TierLow,
			BodyTargets:         model.BodyTargets{Wrist: 1, Finger: 1},
			MotorFeatures:       model.MotorFeatures{Grasping: true, PronationSupination: true, RangeOfMotionH: model.TierLow, RangeOfMotionV: model.TierLow},
			CognitiveFeatures:   model.CognitiveFeatures{Attention: true},
			CognitiveDemand:     0.1,
			SafetyConstraints:   model.SafetyConstraints{MaxDuration: 30},
		},
		{
			ID:                  "230",
			Name:                "Card Match",
			Description:         "Flip cards and recall the positions of pairs.",
			Category:            model.CategoryCognitive,
			DifficultyCognitive: model.TierMid,
			DifficultyMotor:     model.TierLow,
			BodyTargets:         model.BodyTargets{Finger: 1},
			MotorFeatures:       model.MotorFeatures{RangeOfMotionH: model.TierLow, RangeOfMotionV: model.TierLow},
			CognitiveFeatures: model.CognitiveFeatures{
				MemoryWM: true, VisualLanguage: true, VisuospatialAwarenessNeglect: true,
			},
			CognitiveDemand:   0.8,
			Gamification:      &model.Gamification{Type: "puzzle", FeedbackModes: []string{"visual"}},
			SafetyConstraints: model.SafetyConstraints{MaxDuration: 40},
		},
		{
			ID:                  "231",
			Name:                "Word Builder",
			Description:         "Assemble words from scattered letters and name the picture.",
			Category:            model.CategoryCognitive,
			DifficultyCognitive: model.TierHigh,
			DifficultyMotor:     model.TierLow,
			MotorFeatures:       model.MotorFeatures{RangeOfMotionH: model.TierLow, RangeOfMotionV: model.TierLow},
			CognitiveFeatures: model.CognitiveFeatures{
				MemorySemantic: true, SemanticProcessing: true, SymbolicUnderstanding: true,
			},
			CognitiveDemand:   0.9,
			SafetyConstraints: model.SafetyConstraints{MaxDuration: 40},
		},
		{
			ID:                  "240",
			Name:                "Weekly Check-in",
			Description:         "Short standardized reach and recall assessment.",
			Category:            model.CategoryAssessment,
			DifficultyCognitive: model.TierLow,
			DifficultyMotor:     model.TierLow,
			BodyTargets:         model.BodyTargets{Arm: 1},
			MotorFeatures:       model.MotorFeatures{Reaching: true, RangeOfMotionH: model.TierMid, RangeOfMotionV: model.TierMid},
			CognitiveFeatures:   model.CognitiveFeatures{Attention: true, MemoryWM: true},
			CognitiveDemand:     0.3,
			SafetyConstraints:   model.SafetyConstraints{MaxDuration: 20},
		},
	}
}

// Patient returns the sample patient profile under id.
func Patient(id string) model.Patient {
	return model.Patient{
		ID:           id,
		Demographics: model.Demographics{Age: 58, Gender: "male", Handedness: "right"},
		StrokeInfo: model.StrokeInfo{
			Type:           "ischemic",
			Location:       "left MCA",
			Heminegligence: 1,
			PareticSide:    "right",
		},
		ClinicalScores: model.ClinicalProfile{
			ARAT: model.ARAT{Grasp: 12, Grip: 8, Pinch: 10, GrossMovement: 9},
			MoCA: model.MoCA{
				Visuospatial: 4, Naming: 3, Memory: 2, Attention: 5,
				Language: 2, Abstraction: 1, DelayedRecall: 3, Orientation: 6,
			},
		},
		ClinicianNotes: "Prefers gamified activities, mild neglect in left visual field.",
		Tags:           []string{"shoulder_subluxation"},
	}
}
