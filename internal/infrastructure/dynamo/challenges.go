package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-wallet-api/internal/domain"
)

// ChallengeRepo manages OTP challenge records.
// PK: phone, SK: issued_at. Expired rows are reaped by the table's TTL, but
// LatestUnexpired filters on expires_at anyway since TTL deletion lags.
type ChallengeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewChallengeRepo(client *dynamodb.Client, tableName string) *ChallengeRepo {
	return &ChallengeRepo{client: client, tableName: tableName}
}

func (r *ChallengeRepo) Put(ctx context.Context, c *domain.OTPChallenge) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// LatestUnexpired returns the most recently issued challenge for the phone
// that has not expired. Older challenges are superseded — only the newest one
// is ever considered for verification.
func (r *ChallengeRepo) LatestUnexpired(ctx context.Context, phone string, now time.Time) (*domain.OTPChallenge, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("phone = :p"),
		FilterExpression:       aws.String("expires_at > :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p":   &types.AttributeValueMemberS{Value: phone},
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Unix())},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(10),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("no active challenge: %w", domain.ErrNotFound)
	}
	var c domain.OTPChallenge
	if err := attributevalue.UnmarshalMap(out.Items[0], &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a consumed challenge so the code cannot be replayed.
func (r *ChallengeRepo) Delete(ctx context.Context, phone, issuedAt string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("phone", phone, "issued_at", issuedAt),
	})
	return err
}
