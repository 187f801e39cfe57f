// Package source reads records for bucketing.
//
// The record format is newline-delimited JSON, one sentence per line:
//
//	{"id": "s1", "words": ["EU", "rejects", "German", "call"], "tags": ["B-ORG", "O", "B-MISC", "O"]}
//
// The number of words is the record length. JSONLReader turns a stream of
// such lines into a lazy sequence; Watcher follows a spool directory and
// hands every new .jsonl file to a callback.
package source
