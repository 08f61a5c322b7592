package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoClient is the slice of the DynamoDB API the store uses.
// *dynamodb.Client satisfies it.
type DynamoClient interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Dynamo is the DynamoDB-backed Store.
type Dynamo struct {
	client DynamoClient
	config Config
}

// NewDynamo creates a Store backed by DynamoDB.
func NewDynamo(client DynamoClient, config Config) *Dynamo {
	config.validate()
	return &Dynamo{
		client: client,
		config: config,
	}
}

// Get returns the row at (pk, sk), or ErrNotFound.
func (d *Dynamo) Get(ctx context.Context, pk, sk string) (Row, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.config.Table),
		Key:       keyAttrs(pk, sk),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", pk, sk, err)
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}
	return Row(result.Item), nil
}

// Put writes a row, unconditionally overwriting any existing row.
func (d *Dynamo) Put(ctx context.Context, row Row) error {
	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.config.Table),
		Item:      row,
	})
	if err != nil {
		pk, sk := Key(row)
		return fmt.Errorf("put %s/%s: %w", pk, sk, err)
	}
	return nil
}

// Delete removes the row at (pk, sk); absent rows are not an error.
func (d *Dynamo) Delete(ctx context.Context, pk, sk string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.config.Table),
		Key:       keyAttrs(pk, sk),
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", pk, sk, err)
	}
	return nil
}

// BatchPut writes up to MaxBatchItems rows. Unprocessed items are
// retried a few times before surfacing as an error; there is no
// atomicity across the batch.
func (d *Dynamo) BatchPut(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	if len(rows) > MaxBatchItems {
		return ErrBatchTooLarge
	}

	requests := make([]types.WriteRequest, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: row},
		})
	}

	const maxRetries = 3
	for attempt := 0; ; attempt++ {
		out, err := d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				d.config.Table: requests,
			},
		})
		if err != nil {
			return fmt.Errorf("batch put: %w", err)
		}
		unprocessed := out.UnprocessedItems[d.config.Table]
		if len(unprocessed) == 0 {
			return nil
		}
		if attempt == maxRetries {
			return fmt.Errorf("batch put: %d rows unprocessed after %d retries", len(unprocessed), maxRetries)
		}
		requests = unprocessed
	}
}

// QueryPartition returns every row under a partition key.
func (d *Dynamo) QueryPartition(ctx context.Context, pk string) ([]Row, error) {
	return d.queryPages(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(d.config.Table),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": AttrPK,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
		},
	})
}

// QueryIndex performs a reverse lookup on a named secondary index.
func (d *Dynamo) QueryIndex(ctx context.Context, index, key string) ([]Row, error) {
	attr, ok := d.config.indexAttr(index)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndex, index)
	}
	return d.queryPages(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(d.config.Table),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#k = :k"),
		ExpressionAttributeNames: map[string]string{
			"#k": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":k": &types.AttributeValueMemberS{Value: key},
		},
	})
}

// Scan walks the whole table with the filter compiled to a server-side
// filter expression.
func (d *Dynamo) Scan(ctx context.Context, filter Filter) ([]Row, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(d.config.Table),
	}

	expr, names, values := compileFilter(filter)
	if expr != "" {
		input.FilterExpression = aws.String(expr)
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	var rows []Row
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		for _, raw := range page.Items {
			rows = append(rows, Row(raw))
		}
	}
	return rows, nil
}

func (d *Dynamo) queryPages(ctx context.Context, input *dynamodb.QueryInput) ([]Row, error) {
	var rows []Row
	paginator := dynamodb.NewQueryPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}
		for _, raw := range page.Items {
			rows = append(rows, Row(raw))
		}
	}
	return rows, nil
}

// compileFilter translates a Filter into a DynamoDB filter expression
// with its attribute name/value maps. An empty expression means no
// constraints were set.
func compileFilter(f Filter) (string, map[string]string, map[string]types.AttributeValue) {
	var clauses []string
	names := map[string]string{}
	values := map[string]types.AttributeValue{}

	if f.Kind != "" {
		names["#kind"] = AttrKind
		values[":kind"] = &types.AttributeValueMemberS{Value: f.Kind}
		clauses = append(clauses, "#kind = :kind")
	}

	if f.Match != "" && len(f.MatchAttrs) > 0 {
		values[":match"] = &types.AttributeValueMemberS{Value: f.Match}
		var ors []string
		for i, attr := range f.MatchAttrs {
			name := fmt.Sprintf("#m%d", i)
			names[name] = attr
			ors = append(ors, fmt.Sprintf("contains(%s, :match)", name))
		}
		clauses = append(clauses, "("+joinStrings(ors, " OR ")+")")
	}

	if f.AnyOf != nil && len(f.AnyOf.Values) > 0 {
		names["#set"] = f.AnyOf.Attr
		var ors []string
		for i, v := range f.AnyOf.Values {
			value := fmt.Sprintf(":any%d", i)
			values[value] = &types.AttributeValueMemberS{Value: v}
			ors = append(ors, fmt.Sprintf("contains(#set, %s)", value))
		}
		clauses = append(clauses, "("+joinStrings(ors, " OR ")+")")
	}

	if f.Range != nil {
		names["#num"] = f.Range.Attr
		if f.Range.Min != nil {
			values[":min"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(*f.Range.Min, 10)}
			clauses = append(clauses, "#num >= :min")
		}
		if f.Range.Max != nil {
			values[":max"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(*f.Range.Max, 10)}
			clauses = append(clauses, "#num <= :max")
		}
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return joinStrings(clauses, " AND "), names, values
}

func keyAttrs(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrPK: &types.AttributeValueMemberS{Value: pk},
		AttrSK: &types.AttributeValueMemberS{Value: sk},
	}
}

// joinStrings joins strings with a separator (avoiding strings package import).
func joinStrings(strs []string, sep string) string {
	if len(strs) == 0 {
		return ""
	}
	result := strs[0]
	for _, s := range strs[1:] {
		result += sep + s
	}
	return result
}
