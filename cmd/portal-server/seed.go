package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/portal/internal/domain/admin"
	"github.com/carebridge/portal/internal/domain/appointments"
	"github.com/carebridge/portal/internal/domain/billing"
	"github.com/carebridge/portal/internal/domain/directory"
	"github.com/carebridge/portal/internal/platform/auth"
)

// runSeed loads a small demo data set: one account per role, a doctor
// directory, and a handful of appointments and invoices for the demo
// patient. Safe to run once against an empty database; reruns fail on
// the duplicate account emails.
func runSeed(ctx context.Context, pool *pgxpool.Pool) error {
	adminSvc := admin.NewService(admin.NewUserRepoPG(pool), admin.NewAuditRepoPG(pool))
	dirSvc := directory.NewService(directory.NewRepoPG(pool))
	apptSvc := appointments.NewService(appointments.NewRepoPG(pool))
	billSvc := billing.NewService(billing.NewRepoPG(pool))

	if _, err := adminSvc.Register(ctx, "Portal Admin", "admin@carebridge.test", "admin-demo-pass", auth.RoleAdmin); err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}
	doctorUser, err := adminSvc.Register(ctx, "Sarah Mitchell", "s.mitchell@carebridge.test", "doctor-demo-pass", auth.RoleDoctor)
	if err != nil {
		return fmt.Errorf("seed doctor account: %w", err)
	}
	patientUser, err := adminSvc.Register(ctx, "John Carter", "j.carter@example.test", "patient-demo-pass", auth.RolePatient)
	if err != nil {
		return fmt.Errorf("seed patient account: %w", err)
	}

	strp := func(s string) *string { return &s }

	doctors := []*directory.Doctor{
		{
			Name: "Sarah Mitchell", Specialty: "Cardiology",
			Email: "s.mitchell@carebridge.test", Phone: strp("+1-555-0101"),
			Location: strp("Building A, Floor 3"), Status: directory.StatusActive,
			Rating: 4.8, ExperienceYears: 14,
		},
		{
			Name: "James Okafor", Specialty: "General Practice",
			Email: "j.okafor@carebridge.test", Phone: strp("+1-555-0102"),
			Location: strp("Building B, Floor 1"), Status: directory.StatusActive,
			Rating: 4.5, ExperienceYears: 9,
		},
		{
			Name: "Priya Patel", Specialty: "Dermatology",
			Email: "p.patel@carebridge.test",
			Location: strp("Building A, Floor 2"), Status: directory.StatusOnLeave,
			Rating: 4.9, ExperienceYears: 11,
		},
	}
	for _, d := range doctors {
		if err := dirSvc.Create(ctx, d); err != nil {
			return fmt.Errorf("seed doctor %s: %w", d.Name, err)
		}
	}

	now := time.Now().UTC()
	appts := []*appointments.Appointment{
		{
			PatientID: patientUser.ID, PatientName: patientUser.Name,
			DoctorID: doctorUser.ID, DoctorName: "Sarah Mitchell",
			Specialty: strp("Cardiology"),
			Date:      now.AddDate(0, 0, 7), TimeSlot: "10:00-10:30",
			Type: strp("checkup"), Status: appointments.StatusConfirmed,
		},
		{
			PatientID: patientUser.ID, PatientName: patientUser.Name,
			DoctorID: doctorUser.ID, DoctorName: "Sarah Mitchell",
			Specialty: strp("Cardiology"),
			Date:      now.AddDate(0, 0, 21), TimeSlot: "14:00-14:30",
			Type: strp("follow-up"),
		},
		{
			PatientID: patientUser.ID, PatientName: patientUser.Name,
			DoctorID: doctorUser.ID, DoctorName: "James Okafor",
			Specialty: strp("General Practice"),
			Date:      now.AddDate(0, -1, 0), TimeSlot: "09:00-09:30",
			Type: strp("consultation"), Status: appointments.StatusCompleted,
		},
	}
	for _, a := range appts {
		if err := apptSvc.Create(ctx, a); err != nil {
			return fmt.Errorf("seed appointment: %w", err)
		}
	}

	invoices := []*billing.Invoice{
		{
			Number: "INV-2026-0001", PatientID: patientUser.ID, PatientName: patientUser.Name,
			Description: strp("Cardiology consultation"), Amount: 180,
			IssuedDate: now.AddDate(0, -1, 0), DueDate: now.AddDate(0, 0, -3),
		},
		{
			Number: "INV-2026-0002", PatientID: patientUser.ID, PatientName: patientUser.Name,
			Description: strp("Blood panel"), Amount: 65,
			Status:      billing.StatusPaid,
		},
		{
			Number: "INV-2026-0003", PatientID: patientUser.ID, PatientName: patientUser.Name,
			Description: strp("Annual checkup"), Amount: 120,
		},
	}
	for _, inv := range invoices {
		if err := billSvc.Create(ctx, inv); err != nil {
			return fmt.Errorf("seed invoice %s: %w", inv.Number, err)
		}
	}

	// Flag the past-due invoice so the demo billing page shows every
	// status.
	if _, err := billSvc.SweepOverdue(ctx); err != nil {
		return fmt.Errorf("seed overdue sweep: %w", err)
	}

	return nil
}
