// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/xmidt-org/httpaux/erraux"
	"github.com/xmidt-org/quantcastid/model"
	"github.com/xmidt-org/quantcastid/store"
)

// client captures the methods of interest from the dynamoDB API. This
// should help mock API calls as well.
type client interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// service defines the dynamodb specific DAO interface. It helps keeping
// capacity accounting orthogonal to business logic.
type service interface {
	Push(ctx context.Context, key model.Key, item model.Item) (*types.ConsumedCapacity, error)
	Get(ctx context.Context, key model.Key) (model.Item, *types.ConsumedCapacity, error)
	Delete(ctx context.Context, key model.Key) (model.Item, *types.ConsumedCapacity, error)
}

// executor satisfies the service interface so dao can then adapt the outputs
// to match the abstract store DAO.
type executor struct {
	// c is the dynamodb client
	c client

	// tableName is the name of the dynamodb table
	tableName string

	now func() time.Time
}

type storableItem struct {
	Bucket  string `dynamodbav:"bucket"`
	ID      string `dynamodbav:"id"`
	Value   string `dynamodbav:"value"`
	Domain  string `dynamodbav:"domain,omitempty"`
	Path    string `dynamodbav:"path,omitempty"`
	Expires *int64 `dynamodbav:"expires,omitempty"`
}

// Dynamo DB attribute keys
const (
	bucketAttributeKey = "bucket"
	idAttributeKey     = "id"
)

var (
	errDefaultDynamoDBFailure = &erraux.Error{
		Err:  errors.New("dynamodb operation failed"),
		Code: http.StatusInternalServerError,
	}
	errBadRequest = &erraux.Error{
		Err:  errors.New("bad request to dynamodb"),
		Code: http.StatusBadRequest,
	}
)

func handleClientError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ValidationException" {
		return store.SanitizedError{Err: err, ErrHTTP: errBadRequest}
	}
	return store.SanitizedError{Err: err, ErrHTTP: errDefaultDynamoDBFailure}
}

func primaryKey(key model.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		bucketAttributeKey: &types.AttributeValueMemberS{Value: key.Bucket},
		idAttributeKey:     &types.AttributeValueMemberS{Value: key.ID},
	}
}

func (d *executor) Push(ctx context.Context, key model.Key, item model.Item) (*types.ConsumedCapacity, error) {
	storingItem := storableItem{
		Bucket: key.Bucket,
		ID:     key.ID,
		Value:  item.Value,
		Domain: item.Domain,
		Path:   item.Path,
	}

	if item.TTL != nil {
		unixExpSeconds := d.now().Unix() + *item.TTL
		storingItem.Expires = &unixExpSeconds
	}

	av, err := attributevalue.MarshalMap(storingItem)
	if err != nil {
		return nil, err
	}

	result, err := d.c.PutItem(ctx, &dynamodb.PutItemInput{
		Item:                   av,
		TableName:              aws.String(d.tableName),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})
	var consumedCapacity *types.ConsumedCapacity
	if result != nil {
		consumedCapacity = result.ConsumedCapacity
	}

	if err != nil {
		return consumedCapacity, handleClientError(err)
	}
	return consumedCapacity, nil
}

func (d *executor) Get(ctx context.Context, key model.Key) (model.Item, *types.ConsumedCapacity, error) {
	output, err := d.c.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:              aws.String(d.tableName),
		Key:                    primaryKey(key),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})
	if err != nil {
		return model.Item{}, nil, handleClientError(err)
	}
	item, err := d.decode(key, output.Item)
	return item, output.ConsumedCapacity, err
}

func (d *executor) Delete(ctx context.Context, key model.Key) (model.Item, *types.ConsumedCapacity, error) {
	output, err := d.c.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:              aws.String(d.tableName),
		Key:                    primaryKey(key),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
		ReturnValues:           types.ReturnValueAllOld,
	})
	if err != nil {
		return model.Item{}, nil, handleClientError(err)
	}
	item, err := d.decode(key, output.Attributes)
	return item, output.ConsumedCapacity, err
}

// decode converts stored attributes into an item. Items dynamo has not yet
// reaped but whose expiry has passed are reported as not found.
func (d *executor) decode(key model.Key, attributes map[string]types.AttributeValue) (model.Item, error) {
	stored := new(storableItem)
	if err := attributevalue.UnmarshalMap(attributes, stored); err != nil {
		return model.Item{}, err
	}

	if stored.Bucket == "" || stored.ID == "" {
		return model.Item{}, store.KeyNotFoundError{Key: key}
	}

	item := model.Item{
		ID:     key.ID,
		Value:  stored.Value,
		Domain: stored.Domain,
		Path:   stored.Path,
	}

	if stored.Expires != nil {
		remainingTTLSeconds := int64(time.Unix(*stored.Expires, 0).Sub(d.now()).Seconds())
		if remainingTTLSeconds < 1 {
			return model.Item{}, store.KeyNotFoundError{Key: key}
		}
		item.TTL = &remainingTTLSeconds
	}

	return item, nil
}
