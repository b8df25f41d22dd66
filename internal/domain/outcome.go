package domain

// Outcome is the result of evaluating one submitted command.
type Outcome struct {
	Status     CommandStatus
	NewBalance int
	Message    string
}
