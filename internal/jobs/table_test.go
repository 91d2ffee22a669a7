package jobs

import "testing"

func job(key, state string) Job {
	return Job{Key: key, State: state, Stage: "prep", Attempt: "1", UpdatedAt: "2024-01-01T00:00:00Z", InputName: key + ".cbz"}
}

func countKinds(changes []Change) map[ChangeKind]int {
	counts := map[ChangeKind]int{}
	for _, c := range changes {
		counts[c.Kind]++
	}
	return counts
}

func TestReconcilePreservesIdentity(t *testing.T) {
	table := NewTable()
	table.Reconcile([]Job{job("a", "QUEUED"), job("b", "QUEUED")})

	before, ok := table.Get("a")
	if !ok {
		t.Fatal("expected row a after first snapshot")
	}

	next := job("a", "RUNNING")
	next.Stage = "ocr"
	next.Attempt = "2"
	next.UpdatedAt = "2024-01-01T00:01:00Z"
	next.InputName = "renamed.cbz"
	changes := table.Reconcile([]Job{next, job("b", "QUEUED")})

	after, _ := table.Get("a")
	if before != after {
		t.Fatal("expected the same *Job for a key present in both snapshots")
	}
	if *after != next {
		t.Fatalf("expected fields from second snapshot, got %+v", *after)
	}
	if len(changes) != 1 || changes[0].Kind != Updated || changes[0].Job != after {
		t.Fatalf("expected one update for a, got %+v", changes)
	}
}

func TestReconcileRemovesStaleKeys(t *testing.T) {
	table := NewTable()
	table.Reconcile([]Job{job("a", "QUEUED"), job("b", "QUEUED"), job("c", "QUEUED")})

	changes := table.Reconcile([]Job{job("a", "QUEUED"), job("c", "QUEUED")})

	if _, ok := table.Get("b"); ok {
		t.Fatal("expected b to be removed")
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	rows := table.Rows()
	if rows[0].Key != "a" || rows[1].Key != "c" {
		t.Fatalf("expected surviving rows to keep order, got %s,%s", rows[0].Key, rows[1].Key)
	}
	if len(changes) != 1 || changes[0].Kind != Removed || changes[0].Job.Key != "b" {
		t.Fatalf("expected one removal for b, got %+v", changes)
	}
}

func TestReconcileAddsNewKeys(t *testing.T) {
	table := NewTable()
	table.Reconcile([]Job{job("a", "QUEUED")})

	incoming := job("z", "DONE")
	changes := table.Reconcile([]Job{job("a", "QUEUED"), incoming})

	row, ok := table.Get("z")
	if !ok {
		t.Fatal("expected z to be added")
	}
	if *row != incoming {
		t.Fatalf("expected added fields to equal snapshot, got %+v", *row)
	}
	if rows := table.Rows(); rows[len(rows)-1] != row {
		t.Fatal("expected new row appended at the end")
	}
	if counts := countKinds(changes); counts[Added] != 1 || len(changes) != 1 {
		t.Fatalf("expected a single add, got %+v", changes)
	}
}

func TestReconcileEmptySnapshotClearsTable(t *testing.T) {
	table := NewTable()
	table.Reconcile([]Job{job("a", "QUEUED"), job("b", "QUEUED")})

	changes := table.Reconcile(nil)
	if table.Len() != 0 {
		t.Fatalf("expected empty table, got %d rows", table.Len())
	}
	if counts := countKinds(changes); counts[Removed] != 2 {
		t.Fatalf("expected two removals, got %+v", changes)
	}
}

func TestReconcileUnchangedRowsEmitNothing(t *testing.T) {
	table := NewTable()
	snapshot := []Job{job("a", "QUEUED"), job("b", "DONE")}
	table.Reconcile(snapshot)

	if changes := table.Reconcile(snapshot); len(changes) != 0 {
		t.Fatalf("expected no changes for identical snapshot, got %+v", changes)
	}
}

func TestReconcileRepeatedKeyInSnapshot(t *testing.T) {
	table := NewTable()
	changes := table.Reconcile([]Job{job("a", "QUEUED"), job("a", "RUNNING")})

	if table.Len() != 1 {
		t.Fatalf("expected a single row for a repeated key, got %d", table.Len())
	}
	row, _ := table.Get("a")
	if row.State != "RUNNING" {
		t.Fatalf("expected last value to win, got %q", row.State)
	}
	if len(changes) != 1 || changes[0].Kind != Added {
		t.Fatalf("expected a single add, got %+v", changes)
	}
}

func TestRowsReturnsCopy(t *testing.T) {
	table := NewTable()
	table.Reconcile([]Job{job("a", "QUEUED")})
	rows := table.Rows()
	rows[0] = nil
	if table.Rows()[0] == nil {
		t.Fatal("mutating Rows result must not affect the table")
	}
}

func TestUpdateFromReportsChange(t *testing.T) {
	row := job("a", "QUEUED")
	if row.UpdateFrom(job("a", "QUEUED")) {
		t.Fatal("expected no change for identical fields")
	}
	if !row.UpdateFrom(job("a", "FAILED")) {
		t.Fatal("expected change when state differs")
	}
	if row.State != "FAILED" {
		t.Fatalf("expected state updated, got %q", row.State)
	}
}
