package models

// Priority represents the urgency of a report or incident
type Priority string

// Predefined Priority values
const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// ValidPriorities returns all valid Priority values
func ValidPriorities() []Priority {
	return []Priority{
		PriorityLow,
		PriorityMedium,
		PriorityHigh,
		PriorityCritical,
	}
}

// IsValid checks if the Priority value is one of the predefined constants
func (p Priority) IsValid() bool {
	for _, valid := range ValidPriorities() {
		if p == valid {
			return true
		}
	}
	return false
}

// String returns the string representation of the Priority
func (p Priority) String() string {
	return string(p)
}
