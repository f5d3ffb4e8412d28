package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dmitrijs2005/authvault/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo implements the pieces of the DynamoDB API the repository uses,
// honoring attribute_not_exists(pk) conditions, so the two-item transaction
// semantics can be exercised in-process.
type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue

	getErr      error
	transactErr error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func itemPK(item map[string]types.AttributeValue) string {
	if s, ok := item["pk"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	if f.transactErr != nil {
		return nil, f.transactErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	reasons := make([]types.CancellationReason, len(params.TransactItems))
	failed := false
	for i, item := range params.TransactItems {
		reasons[i] = types.CancellationReason{Code: aws.String("None")}
		if item.Put == nil {
			continue
		}
		if _, exists := f.items[itemPK(item.Put.Item)]; exists {
			reasons[i].Code = aws.String("ConditionalCheckFailed")
			failed = true
		}
	}
	if failed {
		return nil, &types.TransactionCanceledException{
			Message:             aws.String("Transaction cancelled"),
			CancellationReasons: reasons,
		}
	}

	for _, item := range params.TransactItems {
		if item.Put != nil {
			f.items[itemPK(item.Put.Item)] = item.Put.Item
		}
	}

	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.items[itemPK(params.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func TestDynamoRepository_CreateAndFind(t *testing.T) {
	repo := NewDynamoRepository(newFakeDynamo(), "users")
	ctx := context.Background()

	rec := testRecord("u1", "a@b.com")
	require.NoError(t, repo.CreateIfAbsent(ctx, rec))

	found, err := repo.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.UserID)
	assert.Equal(t, "a@b.com", found.Email)
	assert.Equal(t, rec.PasswordHash, found.PasswordHash)
}

func TestDynamoRepository_DuplicateEmail(t *testing.T) {
	repo := NewDynamoRepository(newFakeDynamo(), "users")
	ctx := context.Background()

	require.NoError(t, repo.CreateIfAbsent(ctx, testRecord("u1", "a@b.com")))

	err := repo.CreateIfAbsent(ctx, testRecord("u2", "a@b.com"))
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestDynamoRepository_FindUnknownEmail(t *testing.T) {
	repo := NewDynamoRepository(newFakeDynamo(), "users")

	_, err := repo.FindByEmail(context.Background(), "nobody@b.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDynamoRepository_TransportErrorIsUnavailable(t *testing.T) {
	fake := newFakeDynamo()
	fake.transactErr = errors.New("dial tcp: connection refused")
	repo := NewDynamoRepository(fake, "users")

	err := repo.CreateIfAbsent(context.Background(), testRecord("u1", "a@b.com"))
	assert.ErrorIs(t, err, common.ErrUnavailable)

	fake.getErr = errors.New("dial tcp: connection refused")
	_, err = repo.FindByEmail(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, common.ErrUnavailable)
}
