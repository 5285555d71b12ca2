package model

import "fmt"

// Category is the primary type of a protocol.
type Category string

const (
	CategoryMotor      Category = "motor"
	CategoryCognitive  Category = "cognitive"
	CategoryAssessment Category = "assessment"
	CategoryBalanced   Category = "balanced"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryMotor, CategoryCognitive, CategoryAssessment, CategoryBalanced:
		return true
	}
	return false
}

// Tier is a three-level ordinal used for difficulty and range of motion.
type Tier string

const (
	TierLow  Tier = "low"
	TierMid  Tier = "mid"
	TierHigh Tier = "high"
)

// Valid reports whether t is low, mid or high.
func (t Tier) Valid() bool {
	return t == TierLow || t == TierMid || t == TierHigh
}

// MotorFeatures describes which motor skills a protocol trains.
type MotorFeatures struct {
	Reaching            bool `json:"reaching" yaml:"reaching"`
	Grasping            bool `json:"grasping" yaml:"grasping"`
	Pinching            bool `json:"pinching" yaml:"pinching"`
	PronationSupination bool `json:"pronation_supination" yaml:"pronation_supination"`
	RangeOfMotionH      Tier `json:"range_of_motion_h" yaml:"range_of_motion_h"`
	RangeOfMotionV      Tier `json:"range_of_motion_v" yaml:"range_of_motion_v"`
}

// Any reports whether at least one boolean motor feature is set.
func (f MotorFeatures) Any() bool {
	return f.Reaching || f.Grasping || f.Pinching || f.PronationSupination
}

// CognitiveFeatures describes which cognitive skills a protocol trains.
type CognitiveFeatures struct {
	ProcessingSpeed              bool `json:"processing_speed" yaml:"processing_speed"`
	Attention                    bool `json:"attention" yaml:"attention"`
	VisualLanguage               bool `json:"visual_language" yaml:"visual_language"`
	VisuospatialAwarenessNeglect bool `json:"visualspatial_processing_awareness_neglect" yaml:"visualspatial_processing_awareness_neglect"`
	Coordination                 bool `json:"coordination" yaml:"coordination"`
	MemoryWM                     bool `json:"memory_wm" yaml:"memory_wm"`
	MemorySemantic               bool `json:"memory_semantic" yaml:"memory_semantic"`
	Math                         bool `json:"math" yaml:"math"`
	DailyLivingActivity          bool `json:"daily_living_activity" yaml:"daily_living_activity"`
	SymbolicUnderstanding        bool `json:"symbolic_understanding" yaml:"symbolic_understanding"`
	SemanticProcessing           bool `json:"semantic_processing" yaml:"semantic_processing"`
}

// SafetyConstraints bounds how a protocol may be prescribed.
type SafetyConstraints struct {
	MaxDuration       int      `json:"max_duration" yaml:"max_duration"`
	Contraindications []string `json:"contraindications" yaml:"contraindications"`
	MaxDailyFrequency int      `json:"max_daily_frequency,omitempty" yaml:"max_daily_frequency,omitempty"`
	MinRestDays       int      `json:"min_rest_period" yaml:"min_rest_period"`
}

// DailyFrequency returns the maximum daily frequency, defaulting to 1.
func (s SafetyConstraints) DailyFrequency() int {
	if s.MaxDailyFrequency == 0 {
		return 1
	}
	return s.MaxDailyFrequency
}

// Validate checks the safety bounds. A zero daily frequency means unset.
func (s SafetyConstraints) Validate() error {
	if s.MaxDuration <= 0 {
		return NewValidationError("safety_constraints.max_duration", s.MaxDuration, "must be positive")
	}
	if s.MaxDailyFrequency < 0 {
		return NewValidationError("safety_constraints.max_daily_frequency", s.MaxDailyFrequency, "must be at least 1")
	}
	if s.MinRestDays < 0 {
		return NewValidationError("safety_constraints.min_rest_period", s.MinRestDays, "must not be negative")
	}
	return nil
}

// BodyTargets flags the body parts a protocol engages.
type BodyTargets struct {
	Arm      int `json:"arm" yaml:"arm"`
	Shoulder int `json:"shoulder" yaml:"shoulder"`
	Wrist    int `json:"wrist" yaml:"wrist"`
	Finger   int `json:"finger" yaml:"finger"`
	Trunk    int `json:"trunk" yaml:"trunk"`
}

// Gamification describes the delivery medium of a protocol.
type Gamification struct {
	Type              string   `json:"type" yaml:"type"`
	FeedbackModes     []string `json:"feedback_modes" yaml:"feedback_modes"`
	DifficultyScaling bool     `json:"difficulty_scaling" yaml:"difficulty_scaling"`
}

// Protocol is a catalog entry. Catalog order is significant for ranking ties.
type Protocol struct {
	ID                  string             `json:"protocol_id" yaml:"protocol_id"`
	Name                string             `json:"name" yaml:"name"`
	Description         string             `json:"description" yaml:"description"`
	Category            Category           `json:"type" yaml:"type"`
	DifficultyCognitive Tier               `json:"difficulty_cognitive" yaml:"difficulty_cognitive"`
	DifficultyMotor     Tier               `json:"difficulty_motor" yaml:"difficulty_motor"`
	DifficultyParams    map[string]float64 `json:"difficulty_params,omitempty" yaml:"difficulty_params,omitempty"`
	BodyTargets         BodyTargets        `json:"body_targets" yaml:"body_targets"`
	MotorFeatures       MotorFeatures      `json:"motor_features" yaml:"motor_features"`
	CognitiveFeatures   CognitiveFeatures  `json:"cognitive_features" yaml:"cognitive_features"`
	CognitiveDemand     float64            `json:"cognitive_demand" yaml:"cognitive_demand"`
	Gamification        *Gamification      `json:"gamification,omitempty" yaml:"gamification,omitempty"`
	SafetyConstraints   SafetyConstraints  `json:"safety_constraints" yaml:"safety_constraints"`
}

// Validate checks enumerations and safety bounds.
func (p Protocol) Validate() error {
	if p.ID == "" {
		return NewValidationError("protocol_id", p.ID, "must not be empty")
	}
	if !p.Category.Valid() {
		return NewValidationError("type", p.Category, "unknown category")
	}
	tiers := []struct {
		field string
		tier  Tier
	}{
		{"difficulty_cognitive", p.DifficultyCognitive},
		{"difficulty_motor", p.DifficultyMotor},
		{"motor_features.range_of_motion_h", p.MotorFeatures.RangeOfMotionH},
		{"motor_features.range_of_motion_v", p.MotorFeatures.RangeOfMotionV},
	}
	for _, t := range tiers {
		if !t.tier.Valid() {
			return NewValidationError(t.field, t.tier, "must be low, mid or high")
		}
	}
	if err := p.SafetyConstraints.Validate(); err != nil {
		return fmt.Errorf("protocol %s: %w", p.ID, err)
	}
	return nil
}
