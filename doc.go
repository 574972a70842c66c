// Package azchat decodes chat-completion API responses whose base
// schema may be transparently augmented with content-filtering fields
// by some deployments, and re-encodes the merged result to the same
// flattened wire shape.
//
// One document is parsed once; base fields and extension fields are
// reconstructed independently through a static field catalog and
// spliced back together, with strict validation: duplicate keys,
// missing required fields, and disagreeing parallel-collection lengths
// all fail the decode with typed Issues.
//
// Two interchangeable strategies are available (DecodeOpt.Strategy): a
// value-first walk over an order-preserving generic tree, and a
// single-pass streaming field visitor. Decoding is pure and stateless;
// concurrent decodes of independent documents need no coordination.
package azchat
