package wizard

import "fmt"

// Step is a wizard position.
type Step int

const (
	StepBasicInfo Step = iota
	StepSpecifications
	StepFeatures
)

// Steps lists the steps in display order.
var Steps = []Step{StepBasicInfo, StepSpecifications, StepFeatures}

// String returns the wire name of the step.
func (s Step) String() string {
	switch s {
	case StepBasicInfo:
		return "basic_info"
	case StepSpecifications:
		return "specifications"
	case StepFeatures:
		return "features"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Title returns the step indicator label.
func (s Step) Title() string {
	switch s {
	case StepBasicInfo:
		return "Basic Information"
	case StepSpecifications:
		return "Specifications"
	case StepFeatures:
		return "Features"
	default:
		return s.String()
	}
}

// Valid reports whether s is a declared step.
func (s Step) Valid() bool {
	return s >= StepBasicInfo && s <= StepFeatures
}

// ParseStep maps a wire name to a Step.
func ParseStep(name string) (Step, error) {
	for _, s := range Steps {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Step) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Step) UnmarshalText(b []byte) error {
	v, err := ParseStep(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ActionKind is a navigation request.
type ActionKind int

const (
	ActionNext ActionKind = iota
	ActionPrevious
	ActionJump
)

// Action is a navigation request with its jump target.
type Action struct {
	Kind   ActionKind
	Target Step
}

// Next moves one step forward.
func Next() Action { return Action{Kind: ActionNext} }

// Previous moves one step back.
func Previous() Action { return Action{Kind: ActionPrevious} }

// JumpTo moves directly to target. Step indicators allow any step to be
// reached from any other.
func JumpTo(target Step) Action { return Action{Kind: ActionJump, Target: target} }

// Transition returns the step reached from current by a. Next and Previous
// stop at the ends; a jump to an undeclared step leaves current unchanged.
func Transition(current Step, a Action) Step {
	switch a.Kind {
	case ActionNext:
		if current < StepFeatures {
			return current + 1
		}
		return StepFeatures
	case ActionPrevious:
		if current > StepBasicInfo {
			return current - 1
		}
		return StepBasicInfo
	case ActionJump:
		if a.Target.Valid() {
			return a.Target
		}
	}
	return current
}

// ScrollMemory remembers the content scroll offset of each step: written
// when a step is left, read when it is entered again.
type ScrollMemory map[Step]int

// Leave records the offset of the step being left.
func (m ScrollMemory) Leave(s Step, offset int) {
	m[s] = offset
}

// Enter returns the offset to restore for s, 0 if it was never left.
func (m ScrollMemory) Enter(s Step) int {
	return m[s]
}
