// Package log provides the logging abstraction used across seqbatch.
//
// Library packages accept a Logger and never write to stderr on their own.
// The zerolog adapter is what the CLI uses; the no-op logger is for tests
// and for embedding seqbatch where logs are unwanted.
//
// # Usage
//
//	logger, err := log.New(log.Options{Level: "debug", Format: "json"})
//	if err != nil {
//	    return err
//	}
//	logger.Info("batch emitted", log.Int("bucket", 2), log.Int("size", 32))
//
// # Version
//
// Current version: 2.0.0
// Minimum compatible version: 2.0.0
package log
