package tracking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/casetrack/casetrack/internal/platform/export"
)

// Service records case-note movements and produces the tracking report. It
// implements the movement recorder interfaces of the batch, returns, and
// opening packages.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// -- Recorder methods, called by the producing workflows --

// CaseNoteReceived records a note arriving through batch verification. No
// department is known at that point.
func (s *Service) CaseNoteReceived(ctx context.Context, patientID uuid.UUID, actor, details string) error {
	return s.record(ctx, patientID, TypeIn, nil, nil, actor, details)
}

// CaseNoteReturnVerified records a verified ward return.
func (s *Service) CaseNoteReturnVerified(ctx context.Context, patientID, departmentID uuid.UUID, doctorID *uuid.UUID, actor, details string) error {
	return s.record(ctx, patientID, TypeIn, &departmentID, doctorID, actor, details)
}

// CaseNoteTakenOut records a note leaving filing.
func (s *Service) CaseNoteTakenOut(ctx context.Context, patientID, departmentID uuid.UUID, doctorID *uuid.UUID, actor, details string) error {
	return s.record(ctx, patientID, TypeOut, &departmentID, doctorID, actor, details)
}

// CaseNoteBroughtBack records a note coming back to filing.
func (s *Service) CaseNoteBroughtBack(ctx context.Context, patientID, departmentID uuid.UUID, doctorID *uuid.UUID, actor, details string) error {
	return s.record(ctx, patientID, TypeIn, &departmentID, doctorID, actor, details)
}

func (s *Service) record(ctx context.Context, patientID uuid.UUID, movementType string, departmentID, doctorID *uuid.UUID, actor, details string) error {
	m := &Movement{
		PatientID:    patientID,
		MovementType: movementType,
		DepartmentID: departmentID,
		DoctorID:     doctorID,
		Actor:        actor,
		OccurredAt:   time.Now(),
		Details:      details,
	}
	return s.repo.Insert(ctx, m)
}

// RegisterFilling records a loose-sheet filling event.
func (s *Service) RegisterFilling(ctx context.Context, actor string, req FillingRequest) (*Movement, error) {
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if req.DepartmentID == uuid.Nil {
		return nil, fmt.Errorf("department_id is required")
	}

	m := &Movement{
		PatientID:    req.PatientID,
		MovementType: TypeFilling,
		DepartmentID: &req.DepartmentID,
		DoctorID:     req.DoctorID,
		Actor:        actor,
		OccurredAt:   time.Now(),
		Details:      strings.TrimSpace(req.Details),
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Report validates and clamps the parameters, then queries movements. The
// doctor filter is dropped for "in" reports: inbound notes are logged
// against filing, not a doctor.
func (s *Service) Report(ctx context.Context, p ReportParams, changed string) ([]*Movement, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Clamp(changed)
	if p.Type == TypeIn {
		p.DoctorID = nil
	}
	return s.repo.Report(ctx, p)
}

// ReportTable renders a report with the column set of its movement type.
func (s *Service) ReportTable(ctx context.Context, p ReportParams, changed string) (export.Table, error) {
	movements, err := s.Report(ctx, p, changed)
	if err != nil {
		return export.Table{}, err
	}

	t := export.Table{
		Title: fmt.Sprintf("Case Note Tracking (%s) %s to %s",
			p.Type, p.StartDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02")),
	}

	switch p.Type {
	case TypeIn:
		t.Headers = []string{"MRN", "Patient", "Received At", "Received By", "Details"}
		for _, m := range movements {
			t.Rows = append(t.Rows, []string{
				m.PatientMRN, m.PatientName, m.OccurredAt.Format("2006-01-02 15:04"), m.Actor, m.Details,
			})
		}
	case TypeOut:
		t.Headers = []string{"MRN", "Patient", "Department", "Doctor", "Taken Out At", "Recorded By", "Details"}
		for _, m := range movements {
			t.Rows = append(t.Rows, []string{
				m.PatientMRN, m.PatientName, m.DepartmentName, m.DoctorName,
				m.OccurredAt.Format("2006-01-02 15:04"), m.Actor, m.Details,
			})
		}
	case TypeFilling:
		t.Headers = []string{"MRN", "Patient", "Department", "Filed At", "Recorded By", "Details"}
		for _, m := range movements {
			t.Rows = append(t.Rows, []string{
				m.PatientMRN, m.PatientName, m.DepartmentName,
				m.OccurredAt.Format("2006-01-02 15:04"), m.Actor, m.Details,
			})
		}
	}
	return t, nil
}
