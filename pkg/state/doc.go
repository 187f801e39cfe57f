// Package state records follow-mode progress so restarts skip spool files
// that were already batched.
//
// # Usage
//
//	repo := state.NewFileRepository("/var/lib/seqbatch")
//
//	s, err := repo.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	if s.Processed("part-0001.jsonl") {
//	    return nil
//	}
//	// ... batch the file ...
//	s.MarkProcessed("part-0001.jsonl", batches, records)
//	if err := repo.Save(ctx, s); err != nil {
//	    return err
//	}
//
// # Version
//
// Current version: 2.0.0
// Minimum compatible version: 2.0.0
//
// See version.go for version constants that can be used programmatically.
package state
