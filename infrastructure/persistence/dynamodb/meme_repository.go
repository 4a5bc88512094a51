package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Jabramco/memebase/domain/core/entities"
	"github.com/Jabramco/memebase/pkg/utils"
)

// memeItem represents the DynamoDB item structure for a catalog entry
type memeItem struct {
	PK         string   `dynamodbav:"PK"`
	SK         string   `dynamodbav:"SK"`
	EntityType string   `dynamodbav:"EntityType"`
	MemeID     string   `dynamodbav:"MemeID"`
	Title      string   `dynamodbav:"Title"`
	Keywords   []string `dynamodbav:"Keywords"`
	ImageURL   string   `dynamodbav:"ImageURL"`
	FileName   string   `dynamodbav:"FileName"`
	FileSize   int64    `dynamodbav:"FileSize"`
	CreatedAt  string   `dynamodbav:"CreatedAt"`
}

// MemeRepository implements ports.MemeRepository on a DynamoDB table
type MemeRepository struct {
	client    Client
	tableName string
	logger    *zap.Logger
}

// NewMemeRepository creates a new MemeRepository
func NewMemeRepository(client Client, tableName string, logger *zap.Logger) *MemeRepository {
	return &MemeRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func memeKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("MEME#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

func toMemeItem(m *entities.Meme) memeItem {
	return memeItem{
		PK:         fmt.Sprintf("MEME#%s", m.ID),
		SK:         "METADATA",
		EntityType: entityMeme,
		MemeID:     m.ID,
		Title:      m.Title,
		Keywords:   m.Keywords,
		ImageURL:   m.ImageURL,
		FileName:   m.FileName,
		FileSize:   m.FileSize,
		CreatedAt:  m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (i memeItem) toEntity() (entities.Meme, error) {
	createdAt, err := utils.ParseRFC3339(i.CreatedAt)
	if err != nil {
		return entities.Meme{}, fmt.Errorf("invalid CreatedAt for meme %s: %w", i.MemeID, err)
	}
	return entities.Meme{
		ID:        i.MemeID,
		Title:     i.Title,
		Keywords:  i.Keywords,
		ImageURL:  i.ImageURL,
		FileName:  i.FileName,
		FileSize:  i.FileSize,
		CreatedAt: createdAt,
	}, nil
}

// Insert stores a meme, assigning an ID when it has none
func (r *MemeRepository) Insert(ctx context.Context, meme *entities.Meme) (*entities.Meme, error) {
	saved := *meme
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}

	av, err := attributevalue.MarshalMap(toMemeItem(&saved))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meme: %w", err)
	}

	cond, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build condition: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       cond.Condition(),
		ExpressionAttributeNames:  cond.Names(),
		ExpressionAttributeValues: cond.Values(),
	}); err != nil {
		r.logger.Error("Failed to insert meme",
			zap.String("memeID", saved.ID),
			zap.Error(err),
		)
		return nil, translateError("insert meme", err)
	}

	r.logger.Debug("Inserted meme", zap.String("memeID", saved.ID), zap.String("title", saved.Title))
	return &saved, nil
}

// ListAll scans every catalog entry and orders them newest first
func (r *MemeRepository) ListAll(ctx context.Context) ([]entities.Meme, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(entityMeme))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build filter: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	memes := []entities.Meme{}
	for {
		result, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, translateError("list memes", err)
		}

		for _, raw := range result.Items {
			var item memeItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping malformed meme item", zap.Error(err))
				continue
			}
			meme, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Skipping malformed meme item", zap.Error(err))
				continue
			}
			memes = append(memes, meme)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	sort.SliceStable(memes, func(i, j int) bool {
		return memes[i].CreatedAt.After(memes[j].CreatedAt)
	})
	return memes, nil
}

// Delete removes a catalog entry
func (r *MemeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       memeKey(id),
	}); err != nil {
		return translateError("delete meme", err)
	}
	return nil
}
