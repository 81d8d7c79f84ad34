// Package finding contains the pure business logic for the finding lifecycle.
// This is part of the Functional Core - no I/O, only pure functions.
package finding

// Status represents the possible states of a finding.
type Status string

const (
	StatusUnassigned       Status = "Sin Asignar"
	StatusAssigned         Status = "Asignado"
	StatusOverdue          Status = "Vencida"
	StatusResponseReceived Status = "Respuesta Recibida"
	StatusAccepted         Status = "Aceptada"
)

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusUnassigned, StatusAssigned, StatusOverdue, StatusResponseReceived, StatusAccepted}
}

// IsValidStatus reports whether s is a known status.
func IsValidStatus(s string) bool {
	for _, st := range AllStatuses() {
		if string(st) == s {
			return true
		}
	}
	return false
}

// OverdueCandidates are the statuses the overdue sweep may move to Vencida.
func OverdueCandidates() []Status {
	return []Status{StatusAssigned, StatusUnassigned}
}

// AwaitingResponse are the statuses in which the responsible user may answer.
func AwaitingResponse() []Status {
	return []Status{StatusAssigned, StatusOverdue}
}

// InitialStatus returns the status of a newly raised finding.
func InitialStatus() Status {
	return StatusUnassigned
}

// IsOverdue reports whether a finding should be swept to Vencida on date today.
// Dates are ISO YYYY-MM-DD strings so lexical order is calendar order.
func IsOverdue(status Status, commitmentDate, today string) bool {
	if commitmentDate == "" {
		return false
	}
	if status != StatusAssigned && status != StatusUnassigned {
		return false
	}
	return commitmentDate < today
}

// ReassignStatus returns the status after changing the responsible user or due date.
// A due date on or after today clears Vencida; an already-past date leaves the status alone.
func ReassignStatus(current Status, newCommitmentDate, today string) Status {
	if newCommitmentDate >= today {
		return StatusAssigned
	}
	return current
}

// TransitionResult captures the new status and the dates the transition stamps.
type TransitionResult struct {
	NewStatus      Status
	AssignmentDate string
	ResponseDate   string
}

// ApplyAssign returns the result of assigning a finding on date today.
func ApplyAssign(today string) TransitionResult {
	return TransitionResult{NewStatus: StatusAssigned, AssignmentDate: today}
}

// ApplyRespond returns the result of an auditee response on date today.
func ApplyRespond(today string) TransitionResult {
	return TransitionResult{NewStatus: StatusResponseReceived, ResponseDate: today}
}

// ApplyAccept returns the result of a reviewer accepting the response.
func ApplyAccept() TransitionResult {
	return TransitionResult{NewStatus: StatusAccepted}
}

// ApplyReject returns the result of a reviewer rejecting the response.
// Responsible user and due date are kept so the auditee can answer again.
func ApplyReject() TransitionResult {
	return TransitionResult{NewStatus: StatusAssigned}
}
