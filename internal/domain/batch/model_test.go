package batch

import "testing"

func batchWith(approved, rejected, pending int) *BatchRequest {
	b := &BatchRequest{}
	for i := 0; i < approved; i++ {
		b.Requests = append(b.Requests, &CaseNoteRequest{Status: StatusApproved})
	}
	for i := 0; i < rejected; i++ {
		b.Requests = append(b.Requests, &CaseNoteRequest{Status: StatusRejected})
	}
	for i := 0; i < pending; i++ {
		b.Requests = append(b.Requests, &CaseNoteRequest{Status: StatusPending})
	}
	b.Recount()
	return b
}

func TestRecount(t *testing.T) {
	b := batchWith(6, 2, 2)

	if b.RequestsCount != 10 || b.ApprovedCount != 6 || b.RejectedCount != 2 || b.PendingCount != 2 {
		t.Errorf("unexpected counts: %+v", b)
	}
	if b.ApprovedCount+b.RejectedCount+b.PendingCount != b.RequestsCount {
		t.Error("counts do not add up")
	}
}

func TestRollupStatus(t *testing.T) {
	cases := []struct {
		approved, rejected, pending int
		want                        string
	}{
		{0, 0, 3, StatusPending},
		{1, 1, 1, StatusPending},
		{3, 0, 0, StatusApproved},
		{0, 3, 0, StatusRejected},
		{2, 1, 0, StatusPartiallyApproved},
		{0, 0, 0, StatusPending},
	}
	for _, tc := range cases {
		b := batchWith(tc.approved, tc.rejected, tc.pending)
		if b.Status != tc.want {
			t.Errorf("approved=%d rejected=%d pending=%d: got %s, want %s",
				tc.approved, tc.rejected, tc.pending, b.Status, tc.want)
		}
	}
}

func TestProgress(t *testing.T) {
	b := batchWith(6, 2, 2)
	if got := b.Progress(); got != 80 {
		t.Errorf("expected 80%%, got %v", got)
	}

	empty := batchWith(0, 0, 0)
	if got := empty.Progress(); got != 0 {
		t.Errorf("expected 0 for empty batch, got %v", got)
	}

	done := batchWith(4, 1, 0)
	if got := done.Progress(); got != 100 {
		t.Errorf("expected 100%%, got %v", got)
	}
}

func TestCanVerify(t *testing.T) {
	eligible := batchWith(3, 0, 0)
	if !eligible.CanVerify() {
		t.Error("fully approved unverified batch should be verifiable")
	}

	verified := batchWith(3, 0, 0)
	verified.IsVerified = true
	if verified.CanVerify() {
		t.Error("already verified batch should not be verifiable")
	}

	pending := batchWith(2, 0, 1)
	if pending.CanVerify() {
		t.Error("batch with pending requests should not be verifiable")
	}

	partial := batchWith(2, 1, 0)
	if partial.CanVerify() {
		t.Error("partially approved batch should not be verifiable")
	}
}
