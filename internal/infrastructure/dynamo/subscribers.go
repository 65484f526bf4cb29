package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/facility-dashboard-api/internal/domain"
)

// SubscriberRepo provides typed DynamoDB operations for the push-subscribers
// table. The table is keyed by endpoint, so Put is a natural upsert.
type SubscriberRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSubscriberRepo(client *dynamodb.Client, tableName string) *SubscriberRepo {
	return &SubscriberRepo{client: client, tableName: tableName}
}

func (r *SubscriberRepo) Put(ctx context.Context, s *domain.PushSubscriber) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal subscriber: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *SubscriberRepo) Get(ctx context.Context, endpoint string) (*domain.PushSubscriber, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("endpoint", endpoint),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("subscriber: %w", domain.ErrNotFound)
	}
	var s domain.PushSubscriber
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubscriberRepo) List(ctx context.Context) ([]domain.PushSubscriber, error) {
	var subs []domain.PushSubscriber
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.PushSubscriber
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		subs = append(subs, page...)
		if out.LastEvaluatedKey == nil {
			return subs, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// Delete removes a subscriber by endpoint. Deleting an endpoint that is
// already gone is a no-op, which makes concurrent pruning safe.
func (r *SubscriberRepo) Delete(ctx context.Context, endpoint string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("endpoint", endpoint),
	})
	return err
}

// Touch records a successful delivery to the endpoint.
func (r *SubscriberRepo) Touch(ctx context.Context, endpoint string, at time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{"last_used_at": at.UTC().Format(time.RFC3339)})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("endpoint", endpoint),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
