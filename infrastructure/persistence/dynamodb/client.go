// Package dynamodb stores the interaction ledger, the local meme list and the
// meme catalog in a single DynamoDB table keyed by PK/SK.
package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/smithy-go"

	appErrors "github.com/Jabramco/memebase/pkg/errors"
)

// Client is the subset of the DynamoDB API used by the stores.
// *dynamodb.Client satisfies it.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var _ Client = (*dynamodb.Client)(nil)

// Entity types stored in the EntityType attribute
const (
	entityKV      = "KV"
	entityKVChunk = "KV_CHUNK"
	entityMeme    = "MEME"
)

// translateError maps DynamoDB API errors onto application errors
func translateError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return appErrors.NewStorageError(operation, err)
	}

	switch ae.ErrorCode() {
	case "ResourceNotFoundException":
		return appErrors.NewUnavailableError("dynamodb table").WithCause(err)
	case "ProvisionedThroughputExceededException", "ThrottlingException", "RequestLimitExceeded":
		return appErrors.NewUnavailableError("dynamodb").
			WithCode("THROTTLED").
			WithCause(err)
	default:
		return appErrors.NewStorageError(fmt.Sprintf("%s (%s)", operation, ae.ErrorCode()), err)
	}
}
