// Package store provides the key-value access layer for the catalog.
//
// The catalog is held in a single sparse table addressed by a composite
// key (partition key + sort key). The store offers point get/put/delete,
// a bounded batch put, a partition query, reverse lookups through named
// secondary indexes, and an unindexed scan with a structured filter.
//
// There are no multi-row transactions and no conditional writes: every
// row is written independently and a put is an unconditional overwrite.
// Consistency across an entity's row-set is the caller's responsibility
// (see the catalog package).
//
// Two implementations are provided: [Dynamo], backed by AWS DynamoDB,
// and [Memory], an in-process table for tests and local development.
package store
