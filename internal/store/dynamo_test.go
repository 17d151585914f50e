package store

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	getOut      *dynamodb.GetItemOutput
	getErr      error
	putErr      error
	queryOuts   []*dynamodb.QueryOutput
	queryErr    error
	queryCalls  int
	lastGetIn   *dynamodb.GetItemInput
	lastPutIn   *dynamodb.PutItemInput
	lastQueryIn *dynamodb.QueryInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetIn = in
	return f.getOut, f.getErr
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutIn = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQueryIn = in
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	out := f.queryOuts[f.queryCalls]
	f.queryCalls++
	return out, nil
}

func valueItem(v string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		valueAttr: &types.AttributeValueMemberS{Value: v},
	}
}

func mustNewDynamo(t *testing.T, api *fakeDynamo) *Dynamo {
	t.Helper()
	d, err := NewDynamo(api, "test-table")
	require.NoError(t, err)
	return d
}

func TestNewDynamo_Validates(t *testing.T) {
	_, err := NewDynamo(nil, "t")
	require.Error(t, err)
	_, err = NewDynamo(&fakeDynamo{}, "  ")
	require.Error(t, err)
}

func TestSplitKey(t *testing.T) {
	pk, sk, err := splitKey("conversation:s1:0000000000042")
	require.NoError(t, err)
	require.Equal(t, "conversation:s1", pk)
	require.Equal(t, "0000000000042", sk)

	_, _, err = splitKey("nosegments")
	require.Error(t, err)
	_, _, err = splitKey("trailing:")
	require.Error(t, err)
}

func TestDynamo_SetSplitsKey(t *testing.T) {
	api := &fakeDynamo{}
	d := mustNewDynamo(t, api)

	require.NoError(t, d.Set(context.Background(), "crm:appointment:0000000000001", map[string]int{"n": 1}))

	require.NotNil(t, api.lastPutIn)
	require.Equal(t, "test-table", *api.lastPutIn.TableName)
	pk := api.lastPutIn.Item["PK"].(*types.AttributeValueMemberS)
	sk := api.lastPutIn.Item["SK"].(*types.AttributeValueMemberS)
	v := api.lastPutIn.Item[valueAttr].(*types.AttributeValueMemberS)
	require.Equal(t, "crm:appointment", pk.Value)
	require.Equal(t, "0000000000001", sk.Value)
	require.JSONEq(t, `{"n":1}`, v.Value)
}

func TestDynamo_GetFoundAndAbsent(t *testing.T) {
	api := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: valueItem(`{"x":true}`)}}
	d := mustNewDynamo(t, api)

	raw, ok, err := d.Get(context.Background(), "crm:appointment:0000000000001")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"x":true}`, string(raw))

	api.getOut = &dynamodb.GetItemOutput{}
	_, ok, err = d.Get(context.Background(), "crm:appointment:0000000000002")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDynamo_GetByPrefixQueriesPartition(t *testing.T) {
	api := &fakeDynamo{queryOuts: []*dynamodb.QueryOutput{
		{Items: []map[string]types.AttributeValue{valueItem(`1`), valueItem(`2`)}},
	}}
	d := mustNewDynamo(t, api)

	values, err := d.GetByPrefix(context.Background(), "conversation:s1:")
	require.NoError(t, err)
	require.Len(t, values, 2)

	pk := api.lastQueryIn.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS)
	require.Equal(t, "conversation:s1", pk.Value)
}

func TestDynamo_GetByPrefixPaginates(t *testing.T) {
	cursor := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "conversation:s1"},
	}
	api := &fakeDynamo{queryOuts: []*dynamodb.QueryOutput{
		{Items: []map[string]types.AttributeValue{valueItem(`1`)}, LastEvaluatedKey: cursor},
		{Items: []map[string]types.AttributeValue{valueItem(`2`)}},
	}}
	d := mustNewDynamo(t, api)

	values, err := d.GetByPrefix(context.Background(), "conversation:s1")
	require.NoError(t, err)
	require.Len(t, values, 2)
	require.Equal(t, 2, api.queryCalls)
}

func TestDynamo_PropagatesErrors(t *testing.T) {
	api := &fakeDynamo{queryErr: context.DeadlineExceeded}
	d := mustNewDynamo(t, api)
	_, err := d.GetByPrefix(context.Background(), "crm:appointment")
	require.Error(t, err)
}
