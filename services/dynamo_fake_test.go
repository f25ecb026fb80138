package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// tableKeys maps each table to its partition key attribute so the fake
// can index items the way DynamoDB would.
var tableKeys = map[string]string{
	"Users":     "userId",
	"Matches":   "matchId",
	"Chatrooms": "chatroomId",
	"Messages":  "messageId",
}

// fakeDynamo is an in-memory DynamoAPI used by the service tests.
// Failure injection: set failPut[table] or failScan[table] to force the
// corresponding call to error.
type fakeDynamo struct {
	mu       sync.Mutex
	tables   map[string]map[string]map[string]types.AttributeValue
	failPut  map[string]error
	failScan map[string]error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		tables:   make(map[string]map[string]map[string]types.AttributeValue),
		failPut:  make(map[string]error),
		failScan: make(map[string]error),
	}
}

func (f *fakeDynamo) keyOf(table string, item map[string]types.AttributeValue) (string, error) {
	attr, ok := tableKeys[table]
	if !ok {
		return "", fmt.Errorf("unknown table %q", table)
	}
	n, ok := item[attr].(*types.AttributeValueMemberN)
	if !ok {
		return "", fmt.Errorf("item in table %q has no numeric key %q", table, attr)
	}
	return n.Value, nil
}

func (f *fakeDynamo) table(name string) map[string]map[string]types.AttributeValue {
	t, ok := f.tables[name]
	if !ok {
		t = make(map[string]map[string]types.AttributeValue)
		f.tables[name] = t
	}
	return t
}

// count reports how many items a table holds.
func (f *fakeDynamo) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}

// has reports whether a record with the given id exists in a table.
func (f *fakeDynamo) has(table string, id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tables[table][fmt.Sprintf("%d", id)]
	return ok
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failPut[*params.TableName]; err != nil {
		return nil, err
	}
	key, err := f.keyOf(*params.TableName, params.Item)
	if err != nil {
		return nil, err
	}
	f.table(*params.TableName)[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key, err := f.keyOf(*params.TableName, params.Key)
	if err != nil {
		return nil, err
	}
	item := f.table(*params.TableName)[key]
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key, err := f.keyOf(*params.TableName, params.Key)
	if err != nil {
		return nil, err
	}
	delete(f.table(*params.TableName), key)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failScan[*params.TableName]; err != nil {
		return nil, err
	}
	var items []map[string]types.AttributeValue
	for _, item := range f.table(*params.TableName) {
		items = append(items, item)
	}
	return &dynamodb.ScanOutput{Items: items}, nil
}

func (f *fakeDynamo) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for tableName, requests := range params.RequestItems {
		table := f.table(tableName)
		for _, request := range requests {
			if request.DeleteRequest != nil {
				key, err := f.keyOf(tableName, request.DeleteRequest.Key)
				if err != nil {
					return nil, err
				}
				delete(table, key)
			}
			if request.PutRequest != nil {
				key, err := f.keyOf(tableName, request.PutRequest.Item)
				if err != nil {
					return nil, err
				}
				table[key] = request.PutRequest.Item
			}
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}
