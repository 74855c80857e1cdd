package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-wallet-api/internal/domain"
)

// TransferRepo provides typed DynamoDB operations for the transfers (ledger)
// table. Entries are append-only: there is no update or delete path.
type TransferRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTransferRepo(client *dynamodb.Client, tableName string) *TransferRepo {
	return &TransferRepo{client: client, tableName: tableName}
}

func (r *TransferRepo) Get(ctx context.Context, transferID string) (*domain.Transfer, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("transfer_id", transferID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("transfer not found: %w", domain.ErrNotFound)
	}
	var t domain.Transfer
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CountRecentBySender counts ledger entries originated by senderID strictly
// after the given instant. Used by the risk scorer; a slightly stale count is
// acceptable, so this is a plain index read outside any transaction.
func (r *TransferRepo) CountRecentBySender(ctx context.Context, senderID string, since time.Time) (int, error) {
	total := 0
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("sender_id-created_at-index"),
			KeyConditionExpression: aws.String("sender_id = :s AND created_at > :t"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":s": &types.AttributeValueMemberS{Value: senderID},
				":t": &types.AttributeValueMemberS{Value: since.UTC().Format(domain.TimeSortLayout)},
			},
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, err
		}
		total += int(out.Count)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return total, nil
}

// ListByAccount returns transfers where the account is sender or receiver,
// newest first, up to limit entries.
func (r *TransferRepo) ListByAccount(ctx context.Context, accountID string, limit int32) ([]domain.Transfer, error) {
	sent, err := r.queryIndex(ctx, "sender_id-created_at-index", "sender_id", accountID, limit)
	if err != nil {
		return nil, err
	}
	received, err := r.queryIndex(ctx, "receiver_id-created_at-index", "receiver_id", accountID, limit)
	if err != nil {
		return nil, err
	}
	merged := append(sent, received...)
	sort.Slice(merged, func(i, j int) bool { return merged[i].CreatedAt.After(merged[j].CreatedAt) })
	if int32(len(merged)) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// ListFlagged returns flagged transfers, newest first.
func (r *TransferRepo) ListFlagged(ctx context.Context, limit int32) ([]domain.Transfer, error) {
	return r.queryIndex(ctx, "flag_status-created_at-index", "flag_status", domain.FlagStatusFlagged, limit)
}

// ScanPage returns a page of ledger entries for the admin review view.
// cursor is a base64-encoded transfer_id used as ExclusiveStartKey.
func (r *TransferRepo) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Transfer, string, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(limit),
	}
	if cursor != "" {
		transferID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("transfer_id", transferID)
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var transfers []domain.Transfer
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &transfers); err != nil {
		return nil, "", err
	}
	sort.Slice(transfers, func(i, j int) bool { return transfers[i].CreatedAt.After(transfers[j].CreatedAt) })
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["transfer_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return transfers, nextCursor, nil
}

func (r *TransferRepo) queryIndex(ctx context.Context, index, attr, value string, limit int32) ([]domain.Transfer, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var transfers []domain.Transfer
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &transfers); err != nil {
		return nil, err
	}
	return transfers, nil
}
