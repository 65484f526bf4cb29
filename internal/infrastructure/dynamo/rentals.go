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

// RentalRepo provides typed DynamoDB operations for the home-rents table.
type RentalRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRentalRepo(client *dynamodb.Client, tableName string) *RentalRepo {
	return &RentalRepo{client: client, tableName: tableName}
}

func (r *RentalRepo) Put(ctx context.Context, c *domain.RentalContract) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal rental contract: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *RentalRepo) Get(ctx context.Context, rentID string) (*domain.RentalContract, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("rent_id", rentID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("rental contract %s: %w", rentID, domain.ErrNotFound)
	}
	var c domain.RentalContract
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *RentalRepo) Scan(ctx context.Context) ([]domain.RentalContract, error) {
	var contracts []domain.RentalContract
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.RentalContract
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		contracts = append(contracts, page...)
		if out.LastEvaluatedKey == nil {
			return contracts, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *RentalRepo) Update(ctx context.Context, rentID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("rent_id", rentID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *RentalRepo) Delete(ctx context.Context, rentID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("rent_id", rentID),
	})
	return err
}
