package jobs

// Job is one unit of work tracked by the orchestrator. Key is its identity.
type Job struct {
	Key       string `json:"jobKey"`
	State     string `json:"state"`
	Stage     string `json:"stage"`
	Attempt   string `json:"attempt"`
	UpdatedAt string `json:"updatedAt"`
	InputName string `json:"inputName"`
}

// UpdateFrom copies the mutable fields of other into j and reports whether
// anything changed. The key is left untouched.
func (j *Job) UpdateFrom(other Job) bool {
	if j.State == other.State &&
		j.Stage == other.Stage &&
		j.Attempt == other.Attempt &&
		j.UpdatedAt == other.UpdatedAt &&
		j.InputName == other.InputName {
		return false
	}
	j.State = other.State
	j.Stage = other.Stage
	j.Attempt = other.Attempt
	j.UpdatedAt = other.UpdatedAt
	j.InputName = other.InputName
	return true
}

// ChangeKind classifies a row event produced by Reconcile.
type ChangeKind int

const (
	Added ChangeKind = iota + 1
	Updated
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Updated:
		return "updated"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Change describes one row event. Job points at the table row for Added and
// Updated, and at the detached row for Removed.
type Change struct {
	Kind ChangeKind
	Job  *Job
}
