package duplicates

import (
	"fmt"
	"strings"
)

// Decision is the operator's resolution for a duplicate job.
type Decision string

const (
	UseExistingResult Decision = "USE_EXISTING_RESULT"
	Discard           Decision = "DISCARD"
	ForceReprocess    Decision = "FORCE_REPROCESS"
)

// Decisions lists the accepted decisions in display order.
func Decisions() []Decision {
	return []Decision{UseExistingResult, Discard, ForceReprocess}
}

func (d Decision) Valid() bool {
	switch d {
	case UseExistingResult, Discard, ForceReprocess:
		return true
	default:
		return false
	}
}

// NeedsNonce reports whether the decision carries a fresh nonce so the
// orchestrator treats it as a new attempt.
func (d Decision) NeedsNonce() bool {
	return d == ForceReprocess
}

// ParseDecision accepts the canonical names case-insensitively, with either
// '-' or '_' as separator.
func ParseDecision(raw string) (Decision, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	d := Decision(normalized)
	if !d.Valid() {
		return "", fmt.Errorf("unknown decision %q (want one of use_existing_result, discard, force_reprocess)", raw)
	}
	return d, nil
}
