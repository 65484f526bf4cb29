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

// VehicleRepo provides typed DynamoDB operations for the vehicles table.
type VehicleRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVehicleRepo(client *dynamodb.Client, tableName string) *VehicleRepo {
	return &VehicleRepo{client: client, tableName: tableName}
}

func (r *VehicleRepo) Put(ctx context.Context, v *domain.Vehicle) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal vehicle: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *VehicleRepo) Get(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("vehicle_id", vehicleID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("vehicle %s: %w", vehicleID, domain.ErrNotFound)
	}
	var v domain.Vehicle
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Scan returns all vehicles. The fleet is small enough that a full scan per
// evaluation pass is acceptable.
func (r *VehicleRepo) Scan(ctx context.Context) ([]domain.Vehicle, error) {
	var vehicles []domain.Vehicle
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Vehicle
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, page...)
		if out.LastEvaluatedKey == nil {
			return vehicles, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *VehicleRepo) Update(ctx context.Context, vehicleID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("vehicle_id", vehicleID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *VehicleRepo) Delete(ctx context.Context, vehicleID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("vehicle_id", vehicleID),
	})
	return err
}
