// Package strategy searches wish allocations that meet per-target success
// thresholds within a wish budget.
package strategy

import (
	"fmt"
	"strings"
)

// Priority ranks how badly a target is wanted. Lower values are served first.
type Priority int

const (
	MustHave   Priority = 1
	Want       Priority = 2
	NiceToHave Priority = 3
	Skip       Priority = 4
)

// Threshold is the success rate the optimizer tries to reach for the tier.
func (p Priority) Threshold() float64 {
	switch p {
	case MustHave:
		return 0.99
	case Want:
		return 0.90
	case NiceToHave:
		return 0.70
	case Skip:
		return 0
	}
	panic(fmt.Sprintf("strategy: unknown priority %d", int(p)))
}

func (p Priority) String() string {
	switch p {
	case MustHave:
		return "must-have"
	case Want:
		return "want"
	case NiceToHave:
		return "nice-to-have"
	case Skip:
		return "skip"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// ParsePriority accepts either the tier number or its name.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "must-have", "musthave", "must_have":
		return MustHave, nil
	case "2", "want":
		return Want, nil
	case "3", "nice-to-have", "nicetohave", "nice_to_have":
		return NiceToHave, nil
	case "4", "skip":
		return Skip, nil
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

func (p Priority) valid() bool { return p >= MustHave && p <= Skip }
