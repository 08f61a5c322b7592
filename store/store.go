package store

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Well-known row attributes.
const (
	AttrPK   = "pk"
	AttrSK   = "sk"
	AttrKind = "kind"
)

// Row is a single stored row: a sparse attribute map carrying at least
// the pk and sk key attributes.
type Row map[string]types.AttributeValue

// Filter is the structured predicate for unindexed scans. All set fields
// must match (AND); zero-valued fields impose no constraint.
type Filter struct {
	// Kind restricts rows to one kind marker (attribute "kind").
	Kind string

	// Match is a pre-lower-cased substring tested against each attribute
	// in MatchAttrs; a row matches when any one attribute contains it.
	Match      string
	MatchAttrs []string

	// AnyOf matches rows whose string-set attribute contains at least
	// one of the given values.
	AnyOf *AnyOf

	// Range bounds a numeric attribute inclusively.
	Range *NumRange
}

// AnyOf is a set-membership constraint.
type AnyOf struct {
	Attr   string
	Values []string
}

// NumRange is an inclusive numeric bound; nil ends are open.
type NumRange struct {
	Attr string
	Min  *int64
	Max  *int64
}

// Store is the key-value contract the catalog components run against.
type Store interface {
	// Get returns the row at (pk, sk), or ErrNotFound.
	Get(ctx context.Context, pk, sk string) (Row, error)

	// Put writes a row, unconditionally overwriting any existing row
	// with the same key.
	Put(ctx context.Context, row Row) error

	// Delete removes the row at (pk, sk). Deleting an absent row is
	// not an error.
	Delete(ctx context.Context, pk, sk string) error

	// BatchPut writes up to MaxBatchItems rows in one call. Larger sets
	// must be chunked by the caller; there is no atomicity across a
	// batch, let alone across batches.
	BatchPut(ctx context.Context, rows []Row) error

	// QueryPartition returns every row sharing the given partition key.
	QueryPartition(ctx context.Context, pk string) ([]Row, error)

	// QueryIndex performs a reverse lookup: all rows whose indexed
	// attribute equals key, for the named secondary index.
	QueryIndex(ctx context.Context, index, key string) ([]Row, error)

	// Scan walks the whole table and returns rows matching the filter.
	Scan(ctx context.Context, filter Filter) ([]Row, error)
}

// StringAttr returns a string attribute's value, or "" if absent or not
// a string.
func StringAttr(row Row, attr string) string {
	if v, ok := row[attr].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

// SetStringAttr sets a string attribute on a row.
func SetStringAttr(row Row, attr, value string) {
	row[attr] = &types.AttributeValueMemberS{Value: value}
}

// Int64Attr returns a numeric attribute's value, or 0 if absent or not
// parseable.
func Int64Attr(row Row, attr string) int64 {
	if v, ok := row[attr].(*types.AttributeValueMemberN); ok {
		n, err := strconv.ParseInt(v.Value, 10, 64)
		if err == nil {
			return n
		}
	}
	return 0
}

// StringSetAttr returns a string-set attribute's values, or nil.
func StringSetAttr(row Row, attr string) []string {
	switch v := row[attr].(type) {
	case *types.AttributeValueMemberSS:
		return v.Value
	case *types.AttributeValueMemberL:
		var out []string
		for _, m := range v.Value {
			if s, ok := m.(*types.AttributeValueMemberS); ok {
				out = append(out, s.Value)
			}
		}
		return out
	}
	return nil
}

// Key returns the (pk, sk) pair of a row.
func Key(row Row) (string, string) {
	return StringAttr(row, AttrPK), StringAttr(row, AttrSK)
}
