package services

import "fmt"

// ValidationError reports a missing field or an action that is invalid for
// the resource's current state.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// PermissionError reports an actor lacking the role or relationship the
// operation requires.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

// ConflictError reports a duplicate resource or a lost race on a concurrent
// mutation. ResourceID names the conflicting resource when known.
type ConflictError struct {
	Resource   string
	ResourceID int
	Message    string
}

func (e *ConflictError) Error() string {
	if e.ResourceID != 0 {
		return fmt.Sprintf("%s %d: %s", e.Resource, e.ResourceID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Resource, e.Message)
}

// NotFoundError reports an unknown resource id.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func permissionErr(message string) error {
	return &PermissionError{Message: message}
}

func conflictErr(resource string, id int, message string) error {
	return &ConflictError{Resource: resource, ResourceID: id, Message: message}
}

func notFoundErr(resource string) error {
	return &NotFoundError{Resource: resource}
}
