package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dmitrijs2005/authvault/common"
	"github.com/dmitrijs2005/authvault/config"
)

// dynamoAPI is the subset of the DynamoDB client used by the repository.
type dynamoAPI interface {
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoRepository stores each user as two items in one table: the record
// item under USER#<id> and a uniqueness item under EMAIL#<email> pointing at
// the record. Creating both in a single conditional transaction is what
// enforces email uniqueness atomically — DynamoDB has no secondary unique
// indexes, so the email item *is* the unique index.
type DynamoRepository struct {
	client dynamoAPI
	table  string
}

func NewDynamoRepository(client dynamoAPI, table string) *DynamoRepository {
	return &DynamoRepository{client: client, table: table}
}

// OpenDynamo builds a DynamoDB-backed repository from the configuration,
// following the same client construction as the KMS keyring: static
// credentials when configured, default chain otherwise, optional base
// endpoint for a local stack.
func OpenDynamo(ctx context.Context, cfg *config.Config) (*DynamoRepository, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")))
	}

	awscfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awscfg, func(o *dynamodb.Options) {
		if cfg.AWSBaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSBaseEndpoint)
		}
	})

	return NewDynamoRepository(client, cfg.DynamoTable), nil
}

func userKey(id string) string     { return "USER#" + id }
func emailKey(email string) string { return "EMAIL#" + email }

func (r *DynamoRepository) CreateIfAbsent(ctx context.Context, record *UserRecord) error {
	recordItem, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	recordItem["pk"] = &types.AttributeValueMemberS{Value: userKey(record.UserID)}

	emailItem := map[string]types.AttributeValue{
		"pk":     &types.AttributeValueMemberS{Value: emailKey(record.Email)},
		"userId": &types.AttributeValueMemberS{Value: record.UserID},
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.table),
				Item:                emailItem,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.table),
				Item:                recordItem,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
		},
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for _, reason := range canceled.CancellationReasons {
				if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
					return common.ErrAlreadyExists
				}
			}
		}
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	return nil
}

func (r *DynamoRepository) FindByEmail(ctx context.Context, email string) (*UserRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            map[string]types.AttributeValue{"pk": &types.AttributeValueMemberS{Value: emailKey(email)}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	if len(out.Item) == 0 {
		return nil, common.ErrNotFound
	}

	var ref struct {
		UserID string `dynamodbav:"userId"`
	}
	if err := attributevalue.UnmarshalMap(out.Item, &ref); err != nil {
		return nil, fmt.Errorf("decoding email item: %w", err)
	}

	out, err = r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            map[string]types.AttributeValue{"pk": &types.AttributeValueMemberS{Value: userKey(ref.UserID)}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	// A dangling email item means the record half is gone; treat as absent.
	if len(out.Item) == 0 {
		return nil, common.ErrNotFound
	}

	record := &UserRecord{}
	if err := attributevalue.UnmarshalMap(out.Item, record); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}

	return record, nil
}
