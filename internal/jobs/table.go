package jobs

// Table is the locally held job collection. It is not safe for concurrent use;
// a single owner goroutine applies snapshots and reads rows.
type Table struct {
	rows  []*Job
	index map[string]*Job
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]*Job)}
}

// Rows returns the current rows in display order. Surviving rows keep their
// position; new rows are appended.
func (t *Table) Rows() []*Job {
	out := make([]*Job, len(t.rows))
	copy(out, t.rows)
	return out
}

// Get returns the row for key.
func (t *Table) Get(key string) (*Job, bool) {
	job, ok := t.index[key]
	return job, ok
}

func (t *Table) Len() int {
	return len(t.rows)
}

// Reconcile merges snapshot into the table and returns the resulting changes.
// Rows whose key appears in snapshot are updated in place and keep their
// pointer; unseen keys are appended; rows missing from snapshot are removed.
// A key repeated within one snapshot resolves to a single row holding the
// last value.
func (t *Table) Reconcile(snapshot []Job) []Change {
	var changes []Change
	stale := make(map[string]struct{}, len(t.index))
	for key := range t.index {
		stale[key] = struct{}{}
	}
	added := make(map[string]struct{})

	for _, incoming := range snapshot {
		if existing, ok := t.index[incoming.Key]; ok {
			delete(stale, incoming.Key)
			if existing.UpdateFrom(incoming) {
				if _, fresh := added[incoming.Key]; !fresh {
					changes = appendUpdate(changes, existing)
				}
			}
			continue
		}
		row := incoming
		t.rows = append(t.rows, &row)
		t.index[row.Key] = &row
		added[row.Key] = struct{}{}
		changes = append(changes, Change{Kind: Added, Job: &row})
	}

	if len(stale) == 0 {
		return changes
	}

	kept := t.rows[:0]
	for _, row := range t.rows {
		if _, gone := stale[row.Key]; gone {
			delete(t.index, row.Key)
			changes = append(changes, Change{Kind: Removed, Job: row})
			continue
		}
		kept = append(kept, row)
	}
	clear(t.rows[len(kept):])
	t.rows = kept
	return changes
}

// appendUpdate records an update for row once per reconcile pass.
func appendUpdate(changes []Change, row *Job) []Change {
	for _, change := range changes {
		if change.Kind == Updated && change.Job == row {
			return changes
		}
	}
	return append(changes, Change{Kind: Updated, Job: row})
}
