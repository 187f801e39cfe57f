// Package sink delivers emitted batches.
//
// Every batch is wrapped in an Envelope carrying a UUID, a sequence number
// and padding figures, encoded with a Codec (JSON or msgpack) and handed
// to a Sink. Sinks exist for plain streams (stdout, files), an HTTP
// ingestion endpoint, Kafka, Redis lists and a local bbolt file.
//
// # Custom Sinks
//
// Implement the Sink interface to deliver elsewhere. Sinks are used from a
// single goroutine by the runner but the bundled ones are safe for
// concurrent use.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package sink
