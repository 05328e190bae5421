package onboarding

import (
	"fmt"

	"github.com/entrhq/onboard/pkg/seed"
)

// ActionKind is what a step does to its element.
type ActionKind string

const (
	ActionClick ActionKind = "click"
	ActionFill  ActionKind = "fill"

	// ActionProbe is the presence check on the password form. It names the
	// action in errors and is never a plan step.
	ActionProbe ActionKind = "probe"
)

// Input is the secret material a run needs. Words must hold exactly
// seed.PhraseLength entries.
type Input struct {
	Words    []string
	Password string
}

// Step is one UI interaction.
type Step struct {
	// Index is the position of the step in the whole plan, starting at 0.
	Index int

	// Name is a short human label used in logs and reports.
	Name string

	Element ElementID
	Action  ActionKind

	// Value is filled into the element for ActionFill steps.
	Value string

	// Secret steps never have their Value logged or reported.
	Secret bool
}

// String describes the step without its value.
func (s Step) String() string {
	return fmt.Sprintf("#%d %s (%s %s)", s.Index, s.Name, s.Action, s.Element)
}

// PasswordBlock is the conditional part of the plan. Steps run only when every
// element in Probe is present.
type PasswordBlock struct {
	Probe []ElementID
	Steps []Step
}

// Plan is the fixed, ordered list of onboarding steps for one run.
type Plan struct {
	Prelude   []Step
	SeedEntry []Step
	Confirm   Step
	Password  PasswordBlock
	Tail      []Step
}

// NewPlan builds the plan for in. It fails with *ConfigError when the phrase or
// password is unusable or when a step references an element outside the
// contract.
func NewPlan(in Input) (*Plan, error) {
	if err := seed.Validate(in.Words); err != nil {
		return nil, &ConfigError{Field: "recovery phrase", Err: err}
	}
	if in.Password == "" {
		return nil, &ConfigError{Field: "password", Err: fmt.Errorf("password is required")}
	}

	b := &planBuilder{}
	p := &Plan{}

	p.Prelude = []Step{
		b.click("accept terms", ElementTermsCheckbox),
		b.click("select import wallet", ElementImportWallet),
		b.click("decline metrics", ElementMetricsNoThanks),
	}

	for i, word := range in.Words {
		id, err := SeedWordElement(i)
		if err != nil {
			return nil, &ConfigError{Field: "recovery phrase", Err: err}
		}
		p.SeedEntry = append(p.SeedEntry, b.fill(fmt.Sprintf("seed word %d", i), id, word))
	}

	p.Confirm = b.click("confirm seed import", ElementSeedConfirm)

	p.Password = PasswordBlock{
		Probe: []ElementID{ElementPasswordNew, ElementPasswordConfirm},
		Steps: []Step{
			b.fill("set new password", ElementPasswordNew, in.Password),
			b.fill("confirm password", ElementPasswordConfirm, in.Password),
			b.click("accept password terms", ElementPasswordTerms),
			b.click("import wallet", ElementPasswordImport),
		},
	}

	p.Tail = []Step{
		b.click("complete onboarding", ElementOnboardingDone),
		b.click("pin extension next", ElementPinNext),
		b.click("pin extension done", ElementPinDone),
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks every step against the element contract.
func (p *Plan) Validate() error {
	for _, s := range p.Steps() {
		if !s.Element.IsKnown() {
			return &ConfigError{Field: "step " + s.Name, Err: fmt.Errorf("unknown element %q", s.Element)}
		}
		switch s.Action {
		case ActionClick:
		case ActionFill:
			if s.Value == "" {
				return &ConfigError{Field: "step " + s.Name, Err: fmt.Errorf("fill step has no value")}
			}
		default:
			return &ConfigError{Field: "step " + s.Name, Err: fmt.Errorf("unknown action %q", s.Action)}
		}
	}
	for _, id := range p.Password.Probe {
		if !id.IsKnown() {
			return &ConfigError{Field: "password probe", Err: fmt.Errorf("unknown element %q", id)}
		}
	}
	return nil
}

// Steps returns every step in execution order, including the conditional block.
func (p *Plan) Steps() []Step {
	all := make([]Step, 0, p.Len())
	all = append(all, p.Prelude...)
	all = append(all, p.SeedEntry...)
	all = append(all, p.Confirm)
	all = append(all, p.Password.Steps...)
	all = append(all, p.Tail...)
	return all
}

// Len returns the number of steps in the plan.
func (p *Plan) Len() int {
	return len(p.Prelude) + len(p.SeedEntry) + 1 + len(p.Password.Steps) + len(p.Tail)
}

type planBuilder struct {
	next int
}

func (b *planBuilder) click(name string, id ElementID) Step {
	s := Step{Index: b.next, Name: name, Element: id, Action: ActionClick}
	b.next++
	return s
}

func (b *planBuilder) fill(name string, id ElementID, value string) Step {
	s := Step{Index: b.next, Name: name, Element: id, Action: ActionFill, Value: value, Secret: true}
	b.next++
	return s
}
