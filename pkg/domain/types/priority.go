package types

import "fmt"

// Priority represents the urgency of a task or template
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

// AllPriorities returns all valid priorities
func AllPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// IsValid checks if the priority is valid
func (p Priority) IsValid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// String returns the display name of the priority
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}
