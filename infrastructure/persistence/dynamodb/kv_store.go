package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxChunkBytes is the largest document slice stored in one item. DynamoDB
// items are capped at 400 KB including attribute names, so documents larger
// than this are split across chunk items.
const MaxChunkBytes = 350 * 1024

// kvItem is the manifest of a stored document. Small documents are kept
// inline in Value; larger ones are split into Chunks items of one Generation.
type kvItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	Value      []byte `dynamodbav:"Value,omitempty"`
	Chunks     int    `dynamodbav:"Chunks,omitempty"`
	Generation string `dynamodbav:"Generation,omitempty"`
	Size       int    `dynamodbav:"Size,omitempty"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// kvChunk holds one slice of a chunked document
type kvChunk struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	Data       []byte `dynamodbav:"Data"`
}

// KeyValueStore implements ports.KeyValueStore on a DynamoDB table
type KeyValueStore struct {
	client    Client
	tableName string
	logger    *zap.Logger
}

// NewKeyValueStore creates a new KeyValueStore
func NewKeyValueStore(client Client, tableName string, logger *zap.Logger) *KeyValueStore {
	return &KeyValueStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func kvPK(key string) string {
	return fmt.Sprintf("KV#%s", key)
}

func chunkSK(generation string, index int) string {
	return fmt.Sprintf("CHUNK#%s#%05d", generation, index)
}

func keyOf(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// Load reads the document stored under key
func (s *KeyValueStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	manifest, found, err := s.manifest(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}
	if manifest.Chunks == 0 {
		return manifest.Value, true, nil
	}

	value := make([]byte, 0, manifest.Size)
	for i := 0; i < manifest.Chunks; i++ {
		result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName:      aws.String(s.tableName),
			Key:            keyOf(kvPK(key), chunkSK(manifest.Generation, i)),
			ConsistentRead: aws.Bool(true),
		})
		if err != nil {
			return nil, false, translateError("load "+key, err)
		}
		if len(result.Item) == 0 {
			return nil, false, fmt.Errorf("chunk %d of %s is missing", i, key)
		}
		var chunk kvChunk
		if err := attributevalue.UnmarshalMap(result.Item, &chunk); err != nil {
			return nil, false, fmt.Errorf("failed to unmarshal chunk %d of %s: %w", i, key, err)
		}
		value = append(value, chunk.Data...)
	}
	if len(value) != manifest.Size {
		return nil, false, fmt.Errorf("document %s has %d bytes, manifest says %d", key, len(value), manifest.Size)
	}
	return value, true, nil
}

// Save replaces the document stored under key. Chunks of a new generation
// are written before the manifest that points at them, so a reader never
// sees a partial document. Chunks of the replaced generation are removed
// afterwards.
func (s *KeyValueStore) Save(ctx context.Context, key string, value []byte) error {
	previous, _, err := s.manifest(ctx, key)
	if err != nil {
		return err
	}

	item := kvItem{
		PK:         kvPK(key),
		SK:         "VALUE",
		EntityType: entityKV,
		UpdatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if len(value) <= MaxChunkBytes {
		item.Value = value
	} else {
		item.Generation = uuid.NewString()
		item.Size = len(value)
		item.Chunks, err = s.putChunks(ctx, key, item.Generation, value)
		if err != nil {
			return err
		}
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		s.logger.Error("Failed to save document",
			zap.String("key", key),
			zap.Int("bytes", len(value)),
			zap.Error(err),
		)
		s.deleteChunks(ctx, key, item.Generation, item.Chunks)
		return translateError("save "+key, err)
	}

	if previous.Chunks > 0 {
		s.deleteChunks(ctx, key, previous.Generation, previous.Chunks)
	}
	return nil
}

func (s *KeyValueStore) manifest(ctx context.Context, key string) (kvItem, bool, error) {
	var item kvItem
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            keyOf(kvPK(key), "VALUE"),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return item, false, translateError("load "+key, err)
	}
	if len(result.Item) == 0 {
		return item, false, nil
	}
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return item, false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return item, true, nil
}

func (s *KeyValueStore) putChunks(ctx context.Context, key, generation string, value []byte) (int, error) {
	count := 0
	for start := 0; start < len(value); start += MaxChunkBytes {
		end := start + MaxChunkBytes
		if end > len(value) {
			end = len(value)
		}
		av, err := attributevalue.MarshalMap(kvChunk{
			PK:         kvPK(key),
			SK:         chunkSK(generation, count),
			EntityType: entityKVChunk,
			Data:       value[start:end],
		})
		if err != nil {
			return 0, fmt.Errorf("failed to marshal chunk %d of %s: %w", count, key, err)
		}
		if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.tableName),
			Item:      av,
		}); err != nil {
			s.deleteChunks(ctx, key, generation, count)
			return 0, translateError(fmt.Sprintf("save chunk %d of %s", count, key), err)
		}
		count++
	}
	return count, nil
}

// deleteChunks removes a chunk generation. Leftovers are unreachable from any
// manifest, so failures are only logged.
func (s *KeyValueStore) deleteChunks(ctx context.Context, key, generation string, count int) {
	ctx = context.WithoutCancel(ctx)
	for i := 0; i < count; i++ {
		if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.tableName),
			Key:       keyOf(kvPK(key), chunkSK(generation, i)),
		}); err != nil {
			s.logger.Warn("Failed to delete document chunk",
				zap.String("key", key),
				zap.String("generation", generation),
				zap.Int("chunk", i),
				zap.Error(err),
			)
		}
	}
}
