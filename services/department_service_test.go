package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"document-tracking-api/config"
	"document-tracking-api/errs"
)

// withScriptedDirectory points the directory at a scripted database and
// resets the cache around the test.
func withScriptedDirectory(t *testing.T, steps []*queryStep) *scriptedDB {
	t.Helper()
	db, state, cleanup := newScriptedGormDB(t, steps)
	previous := config.DB
	config.DB = db
	ClearDepartmentCache()
	t.Cleanup(func() {
		ClearDepartmentCache()
		config.DB = previous
		cleanup()
	})
	return state
}

func departmentRowsStep(rows [][]driver.Value) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: regexp.MustCompile("SELECT .* FROM `departments` WHERE delete_at IS NULL"),
		columns: []string{"department_id", "department_name"},
		rows:    rows,
	}
}

func TestGetDepartmentByIDMissIsNotFound(t *testing.T) {
	// the miss triggers one forced refresh before giving up
	state := withScriptedDirectory(t, []*queryStep{
		departmentRowsStep([][]driver.Value{{int64(1), "Registrar"}}),
		departmentRowsStep([][]driver.Value{{int64(1), "Registrar"}}),
	})

	if _, err := GetDepartmentByID(99); !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestGetDepartmentsOutageIsDatabaseError(t *testing.T) {
	state := withScriptedDirectory(t, []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `departments` WHERE delete_at IS NULL"),
			err:     errors.New("connection refused"),
		},
	})

	_, err := GetDepartments()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if errs.CodeOf(err) != errs.CodeDatabase {
		t.Fatalf("an outage must report %s, got %s", errs.CodeDatabase, errs.CodeOf(err))
	}
	if errs.IsNotFound(err) {
		t.Fatalf("an outage must not masquerade as not found")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestGetDepartmentByIDRejectsBadID(t *testing.T) {
	if _, err := GetDepartmentByID(0); !errs.IsValidation(err) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

func TestDepartmentNameUsesCache(t *testing.T) {
	state := withScriptedDirectory(t, []*queryStep{
		departmentRowsStep([][]driver.Value{
			{int64(1), "Registrar"},
			{int64(2), "Accounting"},
		}),
	})

	if got := DepartmentName(2); got != "Accounting" {
		t.Fatalf("expected Accounting, got %q", got)
	}
	// second lookup hits the cache, no further query expected
	if got := DepartmentName(1); got != "Registrar" {
		t.Fatalf("expected Registrar, got %q", got)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
