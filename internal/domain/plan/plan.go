// Package plan distributes ranked protocols over a seven-day week.
package plan

import (
	"time"

	"github.com/okian/rehabplan/internal/domain/model"
	"github.com/okian/rehabplan/internal/domain/scoring"
)

// DefaultItemsPerDay caps the number of protocols placed on one day.
const DefaultItemsPerDay = 4

// OtherPolicy decides what happens to protocols that are neither motor nor
// cognitive.
type OtherPolicy string

const (
	// OtherExclude drops assessment and balanced protocols from the plan.
	OtherExclude OtherPolicy = "exclude"
	// OtherFill places them only after both primary queues are empty.
	OtherFill OtherPolicy = "fill"
)

// ParseOtherPolicy maps a config or query value to a policy. The empty
// string selects OtherExclude.
func ParseOtherPolicy(s string) (OtherPolicy, error) {
	switch OtherPolicy(s) {
	case "", OtherExclude:
		return OtherExclude, nil
	case OtherFill:
		return OtherFill, nil
	}
	return "", model.NewValidationError("plan_other_categories", s, "must be exclude or fill")
}

// Weekdays lists plan days in order. Even positions are motor-led.
var Weekdays = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Option configures Build.
type Option func(*builder)

// WithItemsPerDay sets the per-day cap. Non-positive values are ignored.
func WithItemsPerDay(n int) Option {
	return func(b *builder) {
		if n > 0 {
			b.perDay = n
		}
	}
}

// WithOtherCategories sets the policy for assessment and balanced protocols.
func WithOtherCategories(p OtherPolicy) Option {
	return func(b *builder) {
		if p == OtherExclude || p == OtherFill {
			b.other = p
		}
	}
}

type builder struct {
	perDay int
	other  OtherPolicy
}

// Day is one scheduled day.
type Day struct {
	Weekday time.Weekday             `json:"-"`
	Name    string                   `json:"day"`
	Lead    model.Category           `json:"lead"`
	Items   []scoring.ScoredProtocol `json:"items"`
}

// Plan is a weekly schedule. Days is always seven entries, Monday first.
type Plan struct {
	Days []Day `json:"days"`
}

// Placed returns the number of scheduled items.
func (p Plan) Placed() int {
	n := 0
	for _, d := range p.Days {
		n += len(d.Items)
	}
	return n
}

// Day returns the entry for a weekday.
func (p Plan) Day(wd time.Weekday) (Day, bool) {
	for _, d := range p.Days {
		if d.Weekday == wd {
			return d, true
		}
	}
	return Day{}, false
}

type queue []scoring.ScoredProtocol

func (q *queue) pop() (scoring.ScoredProtocol, bool) {
	if len(*q) == 0 {
		return scoring.ScoredProtocol{}, false
	}
	head := (*q)[0]
	*q = (*q)[1:]
	return head, true
}

// Build assigns ranked protocols to days. Motor and cognitive protocols form
// two queues in rank order. Each day takes from its lead queue first and
// falls back to the other; with OtherFill a third queue is drained once both
// are empty. Placement stops when every queue is empty.
func Build(ranked []scoring.ScoredProtocol, opts ...Option) Plan {
	b := builder{perDay: DefaultItemsPerDay, other: OtherExclude}
	for _, opt := range opts {
		opt(&b)
	}

	var motor, cognitive, other queue
	for _, sp := range ranked {
		switch sp.Protocol.Category {
		case model.CategoryMotor:
			motor = append(motor, sp)
		case model.CategoryCognitive:
			cognitive = append(cognitive, sp)
		default:
			if b.other == OtherFill {
				other = append(other, sp)
			}
		}
	}

	p := Plan{Days: make([]Day, 0, len(Weekdays))}
	for i, wd := range Weekdays {
		day := Day{Weekday: wd, Name: wd.String(), Lead: model.CategoryCognitive}
		lead, follow := &cognitive, &motor
		if i%2 == 0 {
			day.Lead = model.CategoryMotor
			lead, follow = &motor, &cognitive
		}
		for len(day.Items) < b.perDay {
			sp, ok := lead.pop()
			if !ok {
				sp, ok = follow.pop()
			}
			if !ok {
				sp, ok = other.pop()
			}
			if !ok {
				break
			}
			day.Items = append(day.Items, sp)
		}
		p.Days = append(p.Days, day)
	}
	return p
}
