package game

import "net/http"

// RuleError is a rejected game action: the player asked for something the
// rules do not allow right now. It carries the HTTP status the controllers
// should answer with, so the precondition order lives in one place.
type RuleError struct {
	Status  int
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func errNotFound(msg string) *RuleError {
	return &RuleError{Status: http.StatusNotFound, Message: msg}
}

func errConflict(msg string) *RuleError {
	return &RuleError{Status: http.StatusConflict, Message: msg}
}

func errForbidden(msg string) *RuleError {
	return &RuleError{Status: http.StatusForbidden, Message: msg}
}

func errBadRequest(msg string) *RuleError {
	return &RuleError{Status: http.StatusBadRequest, Message: msg}
}
