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

// BillRepo provides typed DynamoDB operations for the electricity-bills table.
type BillRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewBillRepo(client *dynamodb.Client, tableName string) *BillRepo {
	return &BillRepo{client: client, tableName: tableName}
}

func (r *BillRepo) Put(ctx context.Context, b *domain.ElectricityBill) error {
	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal electricity bill: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *BillRepo) Get(ctx context.Context, billID string) (*domain.ElectricityBill, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("bill_id", billID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("electricity bill %s: %w", billID, domain.ErrNotFound)
	}
	var b domain.ElectricityBill
	if err := attributevalue.UnmarshalMap(out.Item, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BillRepo) Scan(ctx context.Context) ([]domain.ElectricityBill, error) {
	var bills []domain.ElectricityBill
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.ElectricityBill
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		bills = append(bills, page...)
		if out.LastEvaluatedKey == nil {
			return bills, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *BillRepo) Update(ctx context.Context, billID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("bill_id", billID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *BillRepo) Delete(ctx context.Context, billID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("bill_id", billID),
	})
	return err
}
