package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-wallet-api/internal/domain"
)

// LedgerWriter commits a transfer as a single DynamoDB transaction: both
// account mutations plus the ledger entry either all apply or none do.
type LedgerWriter struct {
	client         *dynamodb.Client
	accountsTable  string
	transfersTable string
}

func NewLedgerWriter(client *dynamodb.Client, accountsTable, transfersTable string) *LedgerWriter {
	return &LedgerWriter{client: client, accountsTable: accountsTable, transfersTable: transfersTable}
}

// Commit writes sender, receiver and the ledger entry in one TransactWriteItems
// call. Each account Put carries a `version = :expected` condition, so a
// transfer racing against another write to either account cancels cleanly and
// surfaces ErrConflict for the caller to re-read and retry. The ledger Put
// requires the transfer id to be unused, keeping entries append-once.
func (w *LedgerWriter) Commit(ctx context.Context, sender, receiver *domain.Account, t *domain.Transfer) error {
	if t.IsFlagged {
		t.FlagStatus = domain.FlagStatusFlagged
	} else {
		t.FlagStatus = domain.FlagStatusClear
	}

	senderPut, err := versionedPut(w.accountsTable, sender)
	if err != nil {
		return err
	}
	receiverPut, err := versionedPut(w.accountsTable, receiver)
	if err != nil {
		sender.Version--
		return err
	}
	entry, err := attributevalue.MarshalMap(t)
	if err != nil {
		sender.Version--
		receiver.Version--
		return fmt.Errorf("marshal transfer: %w", err)
	}
	// created_at is a GSI range key compared lexically; re-render it fixed
	// width so ordering stays chronological (MarshalMap trims trailing zeros).
	entry["created_at"] = &types.AttributeValueMemberS{Value: t.CreatedAt.UTC().Format(domain.TimeSortLayout)}

	_, err = w.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: senderPut},
			{Put: receiverPut},
			{Put: &types.Put{
				TableName:           aws.String(w.transfersTable),
				Item:                entry,
				ConditionExpression: aws.String("attribute_not_exists(transfer_id)"),
			}},
		},
	})
	if err != nil {
		sender.Version--
		receiver.Version--
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			for _, reason := range tce.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return fmt.Errorf("account changed concurrently: %w", domain.ErrConflict)
				}
			}
		}
		return fmt.Errorf("commit transfer: %w", err)
	}
	return nil
}

func versionedPut(table string, a *domain.Account) (*types.Put, error) {
	expected := a.Version
	a.Version++
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		a.Version = expected
		return nil, fmt.Errorf("marshal account: %w", err)
	}
	return &types.Put{
		TableName:           aws.String(table),
		Item:                item,
		ConditionExpression: aws.String("version = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expected)},
		},
	}, nil
}
