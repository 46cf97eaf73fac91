package service

import (
	"context"
	"errors"
	"testing"

	"github.com/qubehealth/appointments-api/internal/core/domain"
	"github.com/qubehealth/appointments-api/internal/core/ports"
)

func TestStaffService_CRUD(t *testing.T) {
	repo := newStubStaffRepo()
	svc := NewStaffService(repo, discardLogger)
	ctx := context.Background()

	created, err := svc.CreateStaff(ctx, ports.StaffInput{Name: "Dr. House", Specialization: "Diagnostics", Email: "house@ppth.org"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected store-assigned id")
	}

	updated, err := svc.UpdateStaff(ctx, created.ID, ports.StaffInput{Name: "Dr. House", Specialization: "Nephrology", Email: "house@ppth.org", Phone: "555"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Specialization != "Nephrology" || updated.Phone != "555" {
		t.Errorf("unexpected update result: %+v", updated)
	}

	list, _ := svc.ListStaff(ctx)
	if len(list) != 1 {
		t.Fatalf("expected 1 staff member, got %d", len(list))
	}

	if err := svc.DeleteStaff(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetStaff(ctx, created.ID); !errors.Is(err, domain.ErrStaffNotFound) {
		t.Errorf("expected ErrStaffNotFound, got %v", err)
	}
}

func TestStaffService_Update_NotFound(t *testing.T) {
	svc := NewStaffService(newStubStaffRepo(), discardLogger)

	_, err := svc.UpdateStaff(context.Background(), 9, ports.StaffInput{Name: "x"})
	if !errors.Is(err, domain.ErrStaffNotFound) {
		t.Errorf("expected ErrStaffNotFound, got %v", err)
	}
}
