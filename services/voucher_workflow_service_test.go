package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"travel-voucher-api/models"
)

var (
	voucherSelectPattern = regexp.MustCompile("SELECT \\* FROM `vouchers` WHERE voucher_id = \\?")
	ownerSelectPattern   = regexp.MustCompile("SELECT \\* FROM `users`")
	tripsSelectPattern   = regexp.MustCompile("SELECT \\* FROM `trips` WHERE owner_id = \\?")
	voucherUpdatePattern = regexp.MustCompile("(?i)UPDATE `vouchers` SET .* WHERE voucher_id = \\? AND status = \\?")
	auditInsertPattern   = regexp.MustCompile("(?i)INSERT INTO `audit_log_entries`")
	notifInsertPattern   = regexp.MustCompile("(?i)INSERT INTO `notifications`")
)

var voucherColumns = []string{"voucher_id", "voucher_number", "owner_id", "month", "year", "status", "mileage_rate"}

func voucherRow(status string) []driver.Value {
	return []driver.Value{int64(5), "TV-202601-9F3A2C1B", int64(7), int64(1), int64(2026), status, 0.67}
}

func ownerStep() *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: ownerSelectPattern,
		columns: []string{"user_id", "role", "position_id", "assigned_supervisor_id"},
		rows:    [][]driver.Value{{int64(7), models.RoleInspector, int64(3), int64(21)}},
	}
}

func TestSubmitPersistsTotalsAndWritesOneAuditEntry(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: voucherSelectPattern,
			columns: voucherColumns,
			rows:    [][]driver.Value{voucherRow(models.VoucherStatusDraft)},
		},
		ownerStep(),
		{
			kind:    kindQuery,
			pattern: tripsSelectPattern,
			columns: []string{"trip_id", "owner_id", "trip_date", "miles_calculated", "lodging_expense"},
			rows: [][]driver.Value{
				{int64(1), int64(7), time.Date(2026, time.January, 12, 0, 0, 0, 0, time.Local), 50.0, 10.0},
			},
		},
		{
			kind:    kindExec,
			pattern: voucherUpdatePattern,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: auditInsertPattern,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: voucherSelectPattern,
			columns: voucherColumns,
			rows:    [][]driver.Value{voucherRow(models.VoucherStatusSubmitted)},
		},
		ownerStep(),
		{
			kind:    kindExec,
			pattern: notifInsertPattern,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	positionID := 3
	actor := &models.User{UserID: 7, Role: models.RoleInspector, PositionID: &positionID}

	voucher, err := NewVoucherWorkflowService(db).Submit(actor, 5, RequestMeta{IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if voucher.Status != models.VoucherStatusSubmitted {
		t.Fatalf("expected submitted, got %s", voucher.Status)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestSubmitRequiresProfilePosition(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: voucherSelectPattern,
			columns: voucherColumns,
			rows:    [][]driver.Value{voucherRow(models.VoucherStatusDraft)},
		},
		ownerStep(),
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	actor := &models.User{UserID: 7, Role: models.RoleInspector} // no position

	_, err := NewVoucherWorkflowService(db).Submit(actor, 5, RequestMeta{})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// No update or audit statements were issued.
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestApproveSupervisorRefusesUnassignedSupervisor(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: voucherSelectPattern,
			columns: voucherColumns,
			rows:    [][]driver.Value{voucherRow(models.VoucherStatusSubmitted)},
		},
		ownerStep(), // owner is assigned to supervisor 21
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	actor := &models.User{UserID: 22, Role: models.RoleSupervisor}

	_, err := NewVoucherWorkflowService(db).ApproveSupervisor(actor, 5, RequestMeta{})
	var permission *PermissionError
	if !errors.As(err, &permission) {
		t.Fatalf("expected PermissionError, got %v", err)
	}

	// The refused call left no mutation and no audit row behind.
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestTransitionLostRaceReturnsConflict(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: voucherSelectPattern,
			columns: voucherColumns,
			rows:    [][]driver.Value{voucherRow(models.VoucherStatusSubmitted)},
		},
		ownerStep(),
		{
			kind:    kindExec,
			pattern: voucherUpdatePattern,
			result:  scriptedResult{rowsAffected: 0}, // another transition won
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	actor := &models.User{UserID: 21, Role: models.RoleSupervisor}

	_, err := NewVoucherWorkflowService(db).ApproveSupervisor(actor, 5, RequestMeta{})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.ResourceID != 5 {
		t.Fatalf("expected conflicting voucher id 5, got %d", conflict.ResourceID)
	}

	// The transaction rolled back before the audit insert.
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestRejectedVoucherIsTerminal(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: voucherSelectPattern,
			columns: voucherColumns,
			rows:    [][]driver.Value{voucherRow(models.VoucherStatusRejected)},
		},
		ownerStep(),
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	actor := &models.User{UserID: 30, Role: models.RoleAdmin}

	_, err := NewVoucherWorkflowService(db).ApproveFleet(actor, 5, RequestMeta{})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for terminal voucher, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	actor := &models.User{UserID: 21, Role: models.RoleSupervisor}

	_, err := NewVoucherWorkflowService(db).Reject(actor, 5, "   ", RequestMeta{})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
