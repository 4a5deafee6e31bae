package merge

import "time"

// Stats reports the outcome of one merge operation. The caller uses it
// to decide whether writing the document back is necessary at all.
type Stats struct {
	Strategy          Strategy  `json:"strategy"`
	TermsProvided     int       `json:"terms_provided"`
	TermsBefore       int       `json:"terms_before"`
	TermsAfter        int       `json:"terms_after"`
	TermsAdded        int       `json:"terms_added"`
	TermsUpdated      int       `json:"terms_updated"`
	TermsRemoved      int       `json:"terms_removed"`
	AnchorFound       bool      `json:"anchor_found"`
	ValidationSkipped bool      `json:"validation_skipped"`
	Timestamp         time.Time `json:"timestamp"`
}

// HasChanges reports whether the merge changed the stored term set.
// The counters are driven by phrase presence, not content diffs: a merge
// that only updates definitions of already-present phrases reports no
// change and the caller skips the write.
func (s *Stats) HasChanges() bool {
	return s.TermsAdded > 0 || s.TermsRemoved > 0 || s.TermsAfter != s.TermsBefore
}
