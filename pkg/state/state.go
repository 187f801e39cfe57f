package state

import "time"

// State is the persisted progress of a follow-mode run.
type State struct {
	// Files maps spool file base names to the time they were batched.
	Files map[string]time.Time `json:"files"`

	// LastFile is the most recently batched file.
	LastFile string `json:"last_file"`

	// Batches and Records are running totals across all processed files.
	Batches int64 `json:"batches"`
	Records int64 `json:"records"`

	// LastCommitAt is the time of the last MarkProcessed.
	LastCommitAt time.Time `json:"last_commit_at"`
}

// IsEmpty returns true if no file has been processed yet.
func (s State) IsEmpty() bool {
	return len(s.Files) == 0
}

// Processed reports whether name was already batched.
func (s State) Processed(name string) bool {
	_, ok := s.Files[name]
	return ok
}

// MarkProcessed records a batched file and adds its totals.
func (s *State) MarkProcessed(name string, batches, records int) {
	if s.Files == nil {
		s.Files = make(map[string]time.Time)
	}
	now := time.Now().UTC()
	s.Files[name] = now
	s.LastFile = name
	s.Batches += int64(batches)
	s.Records += int64(records)
	s.LastCommitAt = now
}
