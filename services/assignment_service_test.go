package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"travel-voucher-api/models"
)

var (
	requestSelectPattern   = regexp.MustCompile("SELECT \\* FROM `assignment_requests` WHERE request_id = \\?")
	inspectorSelectPattern = regexp.MustCompile("SELECT \\* FROM `users` WHERE user_id = \\? AND role = \\?")
	pendingSelectPattern   = regexp.MustCompile("SELECT \\* FROM `assignment_requests` WHERE inspector_id = \\? AND status = \\?")
	requestUpdatePattern   = regexp.MustCompile("(?i)UPDATE `assignment_requests` SET .* WHERE request_id = \\? AND status = \\?")
	directoryUpdatePattern = regexp.MustCompile("(?i)UPDATE `users` SET .* WHERE user_id = \\?")
)

var requestColumns = []string{"request_id", "inspector_id", "requesting_supervisor_id", "status", "reason"}

func requestRow(status string) []driver.Value {
	return []driver.Value{int64(9), int64(7), int64(21), status, "workload"}
}

func inspectorStep(flsSupervisorID int64) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: inspectorSelectPattern,
		columns: []string{"user_id", "role", "fls_supervisor_id"},
		rows:    [][]driver.Value{{int64(7), models.RoleInspector, flsSupervisorID}},
	}
}

func TestRequestAssignmentRejectsSecondPendingRequest(t *testing.T) {
	steps := []*queryStep{
		inspectorStep(30),
		{
			kind:    kindQuery,
			pattern: pendingSelectPattern,
			columns: requestColumns,
			rows:    [][]driver.Value{requestRow(models.AssignmentStatusPending)},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	actor := &models.User{UserID: 22, Role: models.RoleSupervisor}

	_, err := NewAssignmentService(db).RequestAssignment(actor, 7, "coverage gap", RequestMeta{})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.ResourceID != 9 {
		t.Fatalf("expected conflicting request id 9, got %d", conflict.ResourceID)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestRequestAssignmentRequiresSupervisorRole(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	actor := &models.User{UserID: 7, Role: models.RoleInspector}

	_, err := NewAssignmentService(db).RequestAssignment(actor, 8, "workload", RequestMeta{})
	var permission *PermissionError
	if !errors.As(err, &permission) {
		t.Fatalf("expected PermissionError, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestProcessRequestRefusesNonFLSSupervisor(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: requestSelectPattern,
			columns: requestColumns,
			rows:    [][]driver.Value{requestRow(models.AssignmentStatusPending)},
		},
		inspectorStep(30),
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	// Supervisor 21 filed the request but is not the FLS tier for inspector 7.
	actor := &models.User{UserID: 21, Role: models.RoleSupervisor}

	_, err := NewAssignmentService(db).ProcessRequest(actor, 9, "approve", RequestMeta{})
	var permission *PermissionError
	if !errors.As(err, &permission) {
		t.Fatalf("expected PermissionError, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestProcessRequestApproveUpdatesDirectoryInSameTransaction(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: requestSelectPattern,
			columns: requestColumns,
			rows:    [][]driver.Value{requestRow(models.AssignmentStatusPending)},
		},
		inspectorStep(30),
		{
			kind:    kindExec,
			pattern: requestUpdatePattern,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: directoryUpdatePattern,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: auditInsertPattern,
			result:  scriptedResult{lastInsertID: 2, rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: requestSelectPattern,
			columns: requestColumns,
			rows:    [][]driver.Value{requestRow(models.AssignmentStatusApproved)},
		},
		{
			// requester lookup for the notification; no row skips it
			kind:    kindQuery,
			pattern: ownerSelectPattern,
			columns: []string{"user_id"},
			rows:    [][]driver.Value{},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	actor := &models.User{UserID: 30, Role: models.RoleSupervisor}

	request, err := NewAssignmentService(db).ProcessRequest(actor, 9, "approve", RequestMeta{})
	if err != nil {
		t.Fatalf("ProcessRequest returned error: %v", err)
	}
	if request.Status != models.AssignmentStatusApproved {
		t.Fatalf("expected approved, got %s", request.Status)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestProcessRequestRejectLeavesDirectoryUntouched(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: requestSelectPattern,
			columns: requestColumns,
			rows:    [][]driver.Value{requestRow(models.AssignmentStatusPending)},
		},
		inspectorStep(30),
		{
			kind:    kindExec,
			pattern: requestUpdatePattern,
			result:  scriptedResult{rowsAffected: 1},
		},
		// no users UPDATE here: a rejection never rewrites the directory
		{
			kind:    kindExec,
			pattern: auditInsertPattern,
			result:  scriptedResult{lastInsertID: 3, rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: requestSelectPattern,
			columns: requestColumns,
			rows:    [][]driver.Value{requestRow(models.AssignmentStatusRejected)},
		},
		{
			kind:    kindQuery,
			pattern: ownerSelectPattern,
			columns: []string{"user_id"},
			rows:    [][]driver.Value{},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	actor := &models.User{UserID: 30, Role: models.RoleSupervisor}

	request, err := NewAssignmentService(db).ProcessRequest(actor, 9, "reject", RequestMeta{})
	if err != nil {
		t.Fatalf("ProcessRequest returned error: %v", err)
	}
	if request.Status != models.AssignmentStatusRejected {
		t.Fatalf("expected rejected, got %s", request.Status)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestProcessRequestAlreadyResolved(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: requestSelectPattern,
			columns: requestColumns,
			rows:    [][]driver.Value{requestRow(models.AssignmentStatusCancelled)},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	actor := &models.User{UserID: 30, Role: models.RoleSupervisor}

	_, err := NewAssignmentService(db).ProcessRequest(actor, 9, "approve", RequestMeta{})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestCancelRequestRequiresReason(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	actor := &models.User{UserID: 21, Role: models.RoleSupervisor}

	_, err := NewAssignmentService(db).CancelRequest(actor, 9, "   ", RequestMeta{})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestCancelRequestRecordsReason(t *testing.T) {
	cancelUpdatePattern := regexp.MustCompile("(?i)UPDATE `assignment_requests` SET .*`cancel_reason`.* WHERE request_id = \\? AND status = \\?")

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: requestSelectPattern,
			columns: requestColumns,
			rows:    [][]driver.Value{requestRow(models.AssignmentStatusPending)},
		},
		{
			kind:    kindExec,
			pattern: cancelUpdatePattern,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: auditInsertPattern,
			result:  scriptedResult{lastInsertID: 5, rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: requestSelectPattern,
			columns: requestColumns,
			rows:    [][]driver.Value{requestRow(models.AssignmentStatusCancelled)},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	// Requester 21 filed request 9.
	actor := &models.User{UserID: 21, Role: models.RoleSupervisor}

	request, err := NewAssignmentService(db).CancelRequest(actor, 9, "inspector retiring", RequestMeta{})
	if err != nil {
		t.Fatalf("CancelRequest returned error: %v", err)
	}
	if request.Status != models.AssignmentStatusCancelled {
		t.Fatalf("expected cancelled, got %s", request.Status)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestCancelRequestRequiresRequester(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: requestSelectPattern,
			columns: requestColumns,
			rows:    [][]driver.Value{requestRow(models.AssignmentStatusPending)},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	actor := &models.User{UserID: 99, Role: models.RoleSupervisor}

	_, err := NewAssignmentService(db).CancelRequest(actor, 9, "changed my mind", RequestMeta{})
	var permission *PermissionError
	if !errors.As(err, &permission) {
		t.Fatalf("expected PermissionError, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
