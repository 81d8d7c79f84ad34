package planproject

// TransitionResult captures the new status and the actual-date changes it implies.
// Empty date fields mean "leave unchanged" unless the matching Clear flag is set.
type TransitionResult struct {
	NewStatus      Status
	ActualStart    string
	ActualEnd      string
	ClearActualEnd bool
}

// ApplyStart stamps the actual start date.
func ApplyStart(today string) TransitionResult {
	return TransitionResult{NewStatus: StatusInProgress, ActualStart: today}
}

// ApplyComplete stamps the actual end date.
func ApplyComplete(today string) TransitionResult {
	return TransitionResult{NewStatus: StatusCompleted, ActualEnd: today}
}

// ApplyReopen clears the actual end date; the actual start date is kept.
func ApplyReopen() TransitionResult {
	return TransitionResult{NewStatus: StatusInProgress, ClearActualEnd: true}
}
