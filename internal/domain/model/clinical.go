package model

import "math"

// Subscale names a single clinical subscale of ARAT or MoCA.
type Subscale string

// ARAT subscales.
const (
	Grasp         Subscale = "grasp"
	Grip          Subscale = "grip"
	Pinch         Subscale = "pinch"
	GrossMovement Subscale = "gross_movement"
)

// MoCA subscales.
const (
	Visuospatial  Subscale = "visuospatial"
	Naming        Subscale = "naming"
	Memory        Subscale = "memory"
	Attention     Subscale = "attention"
	Language      Subscale = "language"
	Abstraction   Subscale = "abstraction"
	DelayedRecall Subscale = "delayed_recall"
	Orientation   Subscale = "orientation"
)

// Instrument maxima: the sum of each instrument's subscale maxima, 57 for
// ARAT and 35 for MoCA.
var (
	ARATMax = instrumentMax(MotorSubscales[:])
	MoCAMax = instrumentMax(CognitiveSubscales[:])
)

// MotorSubscales lists the ARAT subscales in scoring order.
var MotorSubscales = [4]Subscale{Grasp, Grip, Pinch, GrossMovement}

// CognitiveSubscales lists the MoCA subscales in scoring order.
var CognitiveSubscales = [8]Subscale{
	Memory, Attention, Language, Naming,
	Abstraction, Visuospatial, DelayedRecall, Orientation,
}

var subscaleMax = map[Subscale]float64{
	Grasp:         18,
	Grip:          12,
	Pinch:         18,
	GrossMovement: 9,
	Visuospatial:  5,
	Naming:        3,
	Memory:        5,
	Attention:     6,
	Language:      3,
	Abstraction:   2,
	DelayedRecall: 5,
	Orientation:   6,
}

func instrumentMax(subscales []Subscale) float64 {
	var total float64
	for _, s := range subscales {
		total += subscaleMax[s]
	}
	return total
}

// MaxScore returns the fixed maximum of a subscale, or 0 for unknown names.
func MaxScore(s Subscale) float64 { return subscaleMax[s] }

// ARAT holds Action Research Arm Test subscale values.
type ARAT struct {
	Grasp         float64 `json:"grasp" yaml:"grasp"`
	Grip          float64 `json:"grip" yaml:"grip"`
	Pinch         float64 `json:"pinch" yaml:"pinch"`
	GrossMovement float64 `json:"gross_movement" yaml:"gross_movement"`
}

// NewARAT builds a validated ARAT record.
func NewARAT(grasp, grip, pinch, gross float64) (ARAT, error) {
	a := ARAT{Grasp: grasp, Grip: grip, Pinch: pinch, GrossMovement: gross}
	if err := a.Validate(); err != nil {
		return ARAT{}, err
	}
	return a, nil
}

// Value returns the observed value of an ARAT subscale.
func (a ARAT) Value(s Subscale) (float64, bool) {
	switch s {
	case Grasp:
		return a.Grasp, true
	case Grip:
		return a.Grip, true
	case Pinch:
		return a.Pinch, true
	case GrossMovement:
		return a.GrossMovement, true
	}
	return 0, false
}

// TotalScore sums all ARAT subscales.
func (a ARAT) TotalScore() float64 {
	return a.Grasp + a.Grip + a.Pinch + a.GrossMovement
}

// Validate checks every subscale against its bound.
func (a ARAT) Validate() error {
	for _, s := range MotorSubscales {
		v, _ := a.Value(s)
		if err := checkSubscale("ARAT."+string(s), s, v); err != nil {
			return err
		}
	}
	return nil
}

// MoCA holds Montreal Cognitive Assessment subscale values.
type MoCA struct {
	Visuospatial  float64 `json:"visuospatial" yaml:"visuospatial"`
	Naming        float64 `json:"naming" yaml:"naming"`
	Memory        float64 `json:"memory" yaml:"memory"`
	Attention     float64 `json:"attention" yaml:"attention"`
	Language      float64 `json:"language" yaml:"language"`
	Abstraction   float64 `json:"abstraction" yaml:"abstraction"`
	DelayedRecall float64 `json:"delayed_recall" yaml:"delayed_recall"`
	Orientation   float64 `json:"orientation" yaml:"orientation"`
}

// NewMoCA builds a validated MoCA record.
func NewMoCA(visuospatial, naming, memory, attention, language, abstraction, delayedRecall, orientation float64) (MoCA, error) {
	m := MoCA{
		Visuospatial:  visuospatial,
		Naming:        naming,
		Memory:        memory,
		Attention:     attention,
		Language:      language,
		Abstraction:   abstraction,
		DelayedRecall: delayedRecall,
		Orientation:   orientation,
	}
	if err := m.Validate(); err != nil {
		return MoCA{}, err
	}
	return m, nil
}

// Value returns the observed value of a MoCA subscale.
func (m MoCA) Value(s Subscale) (float64, bool) {
	switch s {
	case Visuospatial:
		return m.Visuospatial, true
	case Naming:
		return m.Naming, true
	case Memory:
		return m.Memory, true
	case Attention:
		return m.Attention, true
	case Language:
		return m.Language, true
	case Abstraction:
		return m.Abstraction, true
	case DelayedRecall:
		return m.DelayedRecall, true
	case Orientation:
		return m.Orientation, true
	}
	return 0, false
}

// TotalScore sums all MoCA subscales.
func (m MoCA) TotalScore() float64 {
	return m.Visuospatial + m.Naming + m.Memory + m.Attention +
		m.Language + m.Abstraction + m.DelayedRecall + m.Orientation
}

// Validate checks every subscale against its bound.
func (m MoCA) Validate() error {
	for _, s := range CognitiveSubscales {
		v, _ := m.Value(s)
		if err := checkSubscale("MoCA."+string(s), s, v); err != nil {
			return err
		}
	}
	return nil
}

// ClinicalProfile is a patient's intake assessment. It is passed by value
// and never mutated during a scoring pass.
type ClinicalProfile struct {
	ARAT ARAT `json:"ARAT" yaml:"ARAT"`
	MoCA MoCA `json:"MoCA" yaml:"MoCA"`
}

// NewClinicalProfile builds a validated profile.
func NewClinicalProfile(arat ARAT, moca MoCA) (ClinicalProfile, error) {
	p := ClinicalProfile{ARAT: arat, MoCA: moca}
	if err := p.Validate(); err != nil {
		return ClinicalProfile{}, err
	}
	return p, nil
}

// Validate checks both instruments.
func (p ClinicalProfile) Validate() error {
	if err := p.ARAT.Validate(); err != nil {
		return err
	}
	return p.MoCA.Validate()
}

// Value returns the observed value of any subscale.
func (p ClinicalProfile) Value(s Subscale) (float64, bool) {
	if v, ok := p.ARAT.Value(s); ok {
		return v, true
	}
	return p.MoCA.Value(s)
}

// Deficit returns (max - value) / max for a subscale. Unknown subscales
// have no deficit.
func (p ClinicalProfile) Deficit(s Subscale) float64 {
	maxScore := MaxScore(s)
	v, ok := p.Value(s)
	if !ok || maxScore == 0 {
		return 0
	}
	return (maxScore - v) / maxScore
}

// MotorDeficits returns the ARAT deficit ratios in MotorSubscales order.
func (p ClinicalProfile) MotorDeficits() [4]float64 {
	var out [4]float64
	for i, s := range MotorSubscales {
		out[i] = p.Deficit(s)
	}
	return out
}

// CognitiveDeficits returns the MoCA deficit ratios in CognitiveSubscales order.
func (p ClinicalProfile) CognitiveDeficits() [8]float64 {
	var out [8]float64
	for i, s := range CognitiveSubscales {
		out[i] = p.Deficit(s)
	}
	return out
}

func checkSubscale(field string, s Subscale, v float64) error {
	maxScore := MaxScore(s)
	if math.IsNaN(v) || v < 0 || v > maxScore {
		return NewValidationError(field, v, "must lie within [0, max]")
	}
	return nil
}
