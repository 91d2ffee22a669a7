// Package datadir names the directories shared with the orchestrator under
// the operator's data root: reports/duplicates, hold/duplicates/<jobKey>,
// in/ and out/.
package datadir
