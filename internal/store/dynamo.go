package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const valueAttr = "v"

// dynamodbAPI is the minimal DynamoDB interface required by Dynamo.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Dynamo maps the KV contract onto a DynamoDB table with a composite key.
// A logical key "conversation:abc:0000000000042" is split at its final
// colon: everything before it is the partition key, the final segment the
// sort key. GetByPrefix therefore requires the prefix to name a full
// partition (all receptionist namespaces do).
type Dynamo struct {
	api       dynamodbAPI
	tableName string
}

// NewDynamo creates a DynamoDB-backed store.
func NewDynamo(api dynamodbAPI, tableName string) (*Dynamo, error) {
	if api == nil {
		return nil, errors.New("store: dynamo api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("store: dynamo table name must not be empty")
	}
	return &Dynamo{api: api, tableName: tableName}, nil
}

// splitKey separates the partition and sort components of a logical key.
func splitKey(key string) (pk, sk string, err error) {
	i := strings.LastIndex(key, ":")
	if i <= 0 || i == len(key)-1 {
		return "", "", fmt.Errorf("store: key %q has no sort segment", key)
	}
	return key[:i], key[i+1:], nil
}

func (d *Dynamo) Set(ctx context.Context, key string, value any) error {
	pk, sk, err := splitKey(key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: set %q: marshal: %w", key, err)
	}
	_, err = d.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item: map[string]types.AttributeValue{
			"PK":      &types.AttributeValueMemberS{Value: pk},
			"SK":      &types.AttributeValueMemberS{Value: sk},
			valueAttr: &types.AttributeValueMemberS{Value: string(raw)},
		},
	})
	if err != nil {
		return fmt.Errorf("store: set %q: %w", key, err)
	}
	return nil
}

func (d *Dynamo) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	pk, sk, err := splitKey(key)
	if err != nil {
		return nil, false, err
	}
	out, err := d.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("store: get %q: %w", key, err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, false, nil
	}
	raw, err := rawValue(out.Item)
	if err != nil {
		return nil, false, fmt.Errorf("store: get %q: %w", key, err)
	}
	return raw, true, nil
}

func (d *Dynamo) GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error) {
	pk := strings.TrimSuffix(prefix, ":")
	var (
		values  []json.RawMessage
		startAt map[string]types.AttributeValue
	)
	for {
		out, err := d.api.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(d.tableName),
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: pk},
			},
			ExclusiveStartKey: startAt,
		})
		if err != nil {
			return nil, fmt.Errorf("store: prefix scan %q: %w", prefix, err)
		}
		for _, item := range out.Items {
			raw, err := rawValue(item)
			if err != nil {
				return nil, fmt.Errorf("store: prefix scan %q: %w", prefix, err)
			}
			values = append(values, raw)
		}
		if len(out.LastEvaluatedKey) == 0 {
			return values, nil
		}
		startAt = out.LastEvaluatedKey
	}
}

func rawValue(item map[string]types.AttributeValue) (json.RawMessage, error) {
	v, ok := item[valueAttr]
	if !ok {
		return nil, fmt.Errorf("missing attribute %q", valueAttr)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("attribute %q is not a string", valueAttr)
	}
	return json.RawMessage(s.Value), nil
}
