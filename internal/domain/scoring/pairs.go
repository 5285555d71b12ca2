package scoring

import "github.com/okian/rehabplan/internal/domain/model"

// Pair links a clinical subscale to the protocol feature that trains it.
type Pair struct {
	Subscale model.Subscale
	Feature  string
	Trains   func(model.Protocol) bool
}

// MotorPairs is the ARAT pairing table.
var MotorPairs = []Pair{
	{model.Grasp, "grasping", func(p model.Protocol) bool { return p.MotorFeatures.Grasping }},
	{model.Grip, "pronation_supination", func(p model.Protocol) bool { return p.MotorFeatures.PronationSupination }},
	{model.Pinch, "pinching", func(p model.Protocol) bool { return p.MotorFeatures.Pinching }},
	{model.GrossMovement, "reaching", func(p model.Protocol) bool { return p.MotorFeatures.Reaching }},
}

// CognitivePairs is the MoCA pairing table.
//
// NOTE: pending clinical review. Several links (visuospatial to
// visual_language, delayed_recall to daily_living_activity) are heuristic.
var CognitivePairs = []Pair{
	{model.Memory, "memory_wm", func(p model.Protocol) bool { return p.CognitiveFeatures.MemoryWM }},
	{model.Attention, "attention", func(p model.Protocol) bool { return p.CognitiveFeatures.Attention }},
	{model.Language, "semantic_processing", func(p model.Protocol) bool { return p.CognitiveFeatures.SemanticProcessing }},
	{model.Naming, "memory_semantic", func(p model.Protocol) bool { return p.CognitiveFeatures.MemorySemantic }},
	{model.Abstraction, "symbolic_understanding", func(p model.Protocol) bool { return p.CognitiveFeatures.SymbolicUnderstanding }},
	{model.Visuospatial, "visual_language", func(p model.Protocol) bool { return p.CognitiveFeatures.VisualLanguage }},
	{model.DelayedRecall, "daily_living_activity", func(p model.Protocol) bool { return p.CognitiveFeatures.DailyLivingActivity }},
	{model.Orientation, "visualspatial_processing_awareness_neglect", func(p model.Protocol) bool {
		return p.CognitiveFeatures.VisuospatialAwarenessNeglect
	}},
}
