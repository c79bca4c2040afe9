package domain

import "errors"

var (
	ErrSessionInvalid         = errors.New("session invalid")
	ErrFetchFailed            = errors.New("queue fetch failed")
	ErrFilterUnresolved       = errors.New("queue filter unresolved")
	ErrActionFailed           = errors.New("assignment action failed")
	ErrActionNotAllowed       = errors.New("assignment action not allowed")
	ErrCaseAlreadyAssigned    = errors.New("case already assigned")
	ErrReassignTargetRequired = errors.New("reassign target required")
	ErrReassignReasonRequired = errors.New("reassign reason required")
)
