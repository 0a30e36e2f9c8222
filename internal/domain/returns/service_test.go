package returns

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	notes   map[uuid.UUID]*ReturnedCaseNote
	updates int
}

func newMockRepo() *mockRepo {
	return &mockRepo{notes: make(map[uuid.UUID]*ReturnedCaseNote)}
}

func (m *mockRepo) Create(_ context.Context, n *ReturnedCaseNote) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	m.notes[n.ID] = n
	return nil
}

func (m *mockRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*ReturnedCaseNote, error) {
	var result []*ReturnedCaseNote
	for _, id := range ids {
		if n, ok := m.notes[id]; ok {
			result = append(result, n)
		}
	}
	return result, nil
}

func (m *mockRepo) Update(_ context.Context, n *ReturnedCaseNote) error {
	if _, ok := m.notes[n.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.updates++
	m.notes[n.ID] = n
	return nil
}

func (m *mockRepo) ListPending(_ context.Context) ([]*ReturnedCaseNote, error) {
	var result []*ReturnedCaseNote
	for _, n := range m.notes {
		if n.Status == StatusPendingVerification {
			result = append(result, n)
		}
	}
	return result, nil
}

type mockRecorder struct {
	verified []uuid.UUID
	failWith error
}

func (m *mockRecorder) CaseNoteReturnVerified(_ context.Context, patientID, departmentID uuid.UUID, doctorID *uuid.UUID, actor, details string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.verified = append(m.verified, patientID)
	return nil
}

func newTestService() (*Service, *mockRepo, *mockRecorder) {
	repo := newMockRepo()
	rec := &mockRecorder{}
	return NewService(repo, rec, nil), repo, rec
}

func submit(t *testing.T, svc *Service, by uuid.UUID, name string) *ReturnedCaseNote {
	t.Helper()
	n, err := svc.Submit(context.Background(), by, name, SubmitRequest{
		PatientID:    uuid.New(),
		DepartmentID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return n
}

func TestSubmit_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Submit(ctx, uuid.New(), "A", SubmitRequest{DepartmentID: uuid.New()}); err == nil {
		t.Error("expected error for missing patient")
	}
	if _, err := svc.Submit(ctx, uuid.New(), "A", SubmitRequest{PatientID: uuid.New()}); err == nil {
		t.Error("expected error for missing department")
	}
}

func TestSubmissions_GroupedByReturner(t *testing.T) {
	svc, _, _ := newTestService()
	alice, bob := uuid.New(), uuid.New()

	submit(t, svc, alice, "Alice")
	submit(t, svc, alice, "Alice")
	submit(t, svc, bob, "Bob")

	subs, err := svc.Submissions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(subs))
	}

	counts := map[uuid.UUID]int{}
	for _, s := range subs {
		counts[s.ReturnedByID] = s.TotalCount
		if len(s.CaseNotes) != s.TotalCount {
			t.Errorf("total_count %d does not match case_notes length %d", s.TotalCount, len(s.CaseNotes))
		}
	}
	if counts[alice] != 2 || counts[bob] != 1 {
		t.Errorf("unexpected grouping: %v", counts)
	}
}

func TestVerify_Selective(t *testing.T) {
	svc, repo, rec := newTestService()
	alice := uuid.New()

	n1 := submit(t, svc, alice, "Alice")
	n2 := submit(t, svc, alice, "Alice")

	subs, err := svc.Verify(context.Background(), uuid.New(), "Verifier", VerifyRequest{
		CaseNoteIDs: []uuid.UUID{n1.ID},
		Action:      ActionVerify,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.notes[n1.ID].Status != StatusVerified {
		t.Error("selected note should be verified")
	}
	if repo.notes[n2.ID].Status != StatusPendingVerification {
		t.Error("unselected note must stay pending")
	}
	if len(rec.verified) != 1 {
		t.Errorf("expected 1 recorded movement, got %d", len(rec.verified))
	}

	// refreshed submissions only contain the remaining pending note
	if len(subs) != 1 || subs[0].TotalCount != 1 {
		t.Errorf("expected refreshed submissions with 1 pending note, got %+v", subs)
	}
}

func TestVerify_RejectRequiresReason(t *testing.T) {
	svc, repo, _ := newTestService()
	n := submit(t, svc, uuid.New(), "Alice")
	ctx := context.Background()

	_, err := svc.Verify(ctx, uuid.New(), "V", VerifyRequest{
		CaseNoteIDs:     []uuid.UUID{n.ID},
		Action:          ActionReject,
		RejectionReason: "   ",
	})
	if err == nil {
		t.Fatal("expected error for blank rejection reason")
	}
	if repo.notes[n.ID].Status != StatusPendingVerification {
		t.Error("note must stay pending when rejection is refused")
	}

	_, err = svc.Verify(ctx, uuid.New(), "V", VerifyRequest{
		CaseNoteIDs:     []uuid.UUID{n.ID},
		Action:          ActionReject,
		RejectionReason: "wrong patient volume",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.notes[n.ID].Status != StatusRejected {
		t.Error("expected note to be rejected")
	}
}

func TestVerify_ReasonOnlyWhenRejecting(t *testing.T) {
	svc, _, _ := newTestService()
	n := submit(t, svc, uuid.New(), "Alice")

	_, err := svc.Verify(context.Background(), uuid.New(), "V", VerifyRequest{
		CaseNoteIDs:     []uuid.UUID{n.ID},
		Action:          ActionVerify,
		RejectionReason: "should not be here",
	})
	if err == nil {
		t.Error("expected error when verify carries a rejection reason")
	}
}

func TestVerify_AlreadyProcessed(t *testing.T) {
	svc, _, _ := newTestService()
	n := submit(t, svc, uuid.New(), "Alice")
	ctx := context.Background()

	svc.Verify(ctx, uuid.New(), "V", VerifyRequest{CaseNoteIDs: []uuid.UUID{n.ID}, Action: ActionVerify})

	_, err := svc.Verify(ctx, uuid.New(), "V", VerifyRequest{CaseNoteIDs: []uuid.UUID{n.ID}, Action: ActionVerify})
	if err == nil {
		t.Error("expected error when verifying an already processed note")
	}
}

func TestVerify_DuplicateIDsCollapsed(t *testing.T) {
	svc, repo, rec := newTestService()
	n := submit(t, svc, uuid.New(), "Alice")

	_, err := svc.Verify(context.Background(), uuid.New(), "V", VerifyRequest{
		CaseNoteIDs: []uuid.UUID{n.ID, n.ID},
		Action:      ActionVerify,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.notes[n.ID].Status != StatusVerified {
		t.Error("expected note to be verified")
	}
	if len(rec.verified) != 1 {
		t.Errorf("expected 1 recorded movement, got %d", len(rec.verified))
	}
}

func TestVerify_RecorderFailureAbortsPersist(t *testing.T) {
	svc, repo, rec := newTestService()
	n := submit(t, svc, uuid.New(), "Alice")

	rec.failWith = fmt.Errorf("movement store down")
	_, err := svc.Verify(context.Background(), uuid.New(), "V", VerifyRequest{
		CaseNoteIDs: []uuid.UUID{n.ID},
		Action:      ActionVerify,
	})
	if err == nil {
		t.Fatal("expected recorder failure to surface")
	}
	if repo.updates != 0 {
		t.Error("decision must not be persisted when movement recording fails")
	}
}

func TestVerify_UnknownID(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Verify(context.Background(), uuid.New(), "V", VerifyRequest{
		CaseNoteIDs: []uuid.UUID{uuid.New()},
		Action:      ActionVerify,
	})
	if err == nil {
		t.Error("expected error for unknown case note id")
	}
}
