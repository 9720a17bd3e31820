// Package ddb implements the repository interfaces using AWS DynamoDB.
// This is the only layer with knowledge of DynamoDB specifics.
package ddb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"secondbrain-backend/internal/chunk"
	"secondbrain-backend/internal/domain"
	"secondbrain-backend/internal/repository"
	appErrors "secondbrain-backend/pkg/errors"
)

const metadataSK = "METADATA#v0"

// sortableTimeLayout keeps every formatted timestamp the same width so
// lexicographic key comparison matches chronological order. RFC3339Nano
// trims trailing zeros and breaks that for whole-second times.
const sortableTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ddbNote is the single-table item shape for a note. Attribute names for
// the note fields are a stored-data contract shared with existing records
// and must not change.
type ddbNote struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	GSI1PK      string `dynamodbav:"GSI1PK"`
	GSI1SK      string `dynamodbav:"GSI1SK"`
	NoteID      string `dynamodbav:"noteId"`
	UserID      string `dynamodbav:"userId"`
	Title       string `dynamodbav:"title"`
	Category    string `dynamodbav:"category"`
	Content     string `dynamodbav:"content"`
	IsPublic    bool   `dynamodbav:"isPublic"`
	BlocksData  string `dynamodbav:"blocksData"`
	TagsStr     string `dynamodbav:"tagsStr"`
	MetadataStr string `dynamodbav:"metadataStr"`
	Position    string `dynamodbav:"position"`
	CreatedAt   string `dynamodbav:"createdAt"`
	UpdatedAt   string `dynamodbav:"updatedAt"`
}

// ddbLayout is the item shape for a per-category canvas layout record.
type ddbLayout struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	UserID      string `dynamodbav:"userId"`
	Category    string `dynamodbav:"category"`
	Connections string `dynamodbav:"connections"`
	UpdatedAt   string `dynamodbav:"updatedAt"`
}

// ddbRepository is the concrete implementation for DynamoDB.
type ddbRepository struct {
	dbClient  *dynamodb.Client
	tableName string
	indexName string
}

// NewRepository creates a new instance of the DynamoDB repository.
func NewRepository(dbClient *dynamodb.Client, tableName, indexName string) repository.Repository {
	return &ddbRepository{
		dbClient:  dbClient,
		tableName: tableName,
		indexName: indexName,
	}
}

func notePK(ownerID, noteID string) string {
	return fmt.Sprintf("USER#%s#NOTE#%s", ownerID, noteID)
}

func layoutPK(ownerID, category string) string {
	return fmt.Sprintf("USER#%s#LAYOUT#%s", ownerID, category)
}

func userGSI1PK(ownerID string) string {
	return fmt.Sprintf("USER#%s", ownerID)
}

func updatedSortKey(t time.Time) string {
	return "UPDATED#" + t.UTC().Format(sortableTimeLayout)
}

// CreateNote stores a new note item.
func (r *ddbRepository) CreateNote(ctx context.Context, note domain.Note) error {
	item, err := attributevalue.MarshalMap(toDDBNote(note))
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal note item")
	}
	_, err = r.dbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return appErrors.Wrap(err, "failed to put note item")
	}
	return nil
}

// FindNoteByID retrieves a single note. Returns (nil, nil) when absent.
func (r *ddbRepository) FindNoteByID(ctx context.Context, ownerID, noteID string) (*domain.Note, error) {
	result, err := r.dbClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: notePK(ownerID, noteID)},
			"SK": &types.AttributeValueMemberS{Value: metadataSK},
		},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to get note item")
	}
	if result.Item == nil {
		return nil, nil
	}

	var item ddbNote
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, appErrors.NewMalformed("failed to unmarshal note item", err)
	}
	note := toDomainNote(item)
	return &note, nil
}

// UpdateNote replaces the stored note item. Merge semantics are the
// facade's responsibility; by the time a note reaches this layer it is the
// complete record to persist (last write wins, no version compare).
func (r *ddbRepository) UpdateNote(ctx context.Context, note domain.Note) error {
	item, err := attributevalue.MarshalMap(toDDBNote(note))
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal note item")
	}
	_, err = r.dbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return appErrors.Wrap(err, "failed to update note item")
	}
	return nil
}

// DeleteNote removes a note item. Blobs referenced by the note are not
// cleaned up.
func (r *ddbRepository) DeleteNote(ctx context.Context, ownerID, noteID string) error {
	_, err := r.dbClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: notePK(ownerID, noteID)},
			"SK": &types.AttributeValueMemberS{Value: metadataSK},
		},
	})
	if err != nil {
		return appErrors.Wrap(err, "failed to delete note item")
	}
	return nil
}

// ListNotes queries the user's notes via GSI1 with optional filters.
func (r *ddbRepository) ListNotes(ctx context.Context, ownerID string, query repository.NoteQuery) ([]domain.Note, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(userGSI1PK(ownerID)))

	builder := expression.NewBuilder().WithKeyCondition(keyCond)

	var filters []expression.ConditionBuilder
	filters = append(filters, expression.Name("SK").Equal(expression.Value(metadataSK)))
	if query.Category != "" {
		filters = append(filters, expression.Name("category").Equal(expression.Value(query.Category)))
	}
	if query.TitlePrefix != "" {
		filters = append(filters, expression.Name("title").BeginsWith(query.TitlePrefix))
	}
	if query.PublicOnly {
		filters = append(filters, expression.Name("isPublic").Equal(expression.Value(true)))
	}
	filter := filters[0]
	for _, f := range filters[1:] {
		filter = filter.And(f)
	}
	builder = builder.WithFilter(filter)

	expr, err := builder.Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build list expression")
	}

	// GSI1SK sorts by update time; descending scan yields most recently
	// updated first.
	scanForward := false

	var notes []domain.Note
	var lastKey map[string]types.AttributeValue
	for {
		result, err := r.dbClient.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ScanIndexForward:          aws.Bool(scanForward),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, "failed to query notes")
		}

		for _, rawItem := range result.Items {
			var item ddbNote
			if err := attributevalue.UnmarshalMap(rawItem, &item); err != nil {
				return nil, appErrors.NewMalformed("failed to unmarshal note item", err)
			}
			notes = append(notes, toDomainNote(item))
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	if query.Sort == repository.SortByCreatedAsc {
		sort.Slice(notes, func(i, j int) bool {
			return notes[i].CreatedAt.Before(notes[j].CreatedAt)
		})
	}
	return notes, nil
}

// SaveLayout stores the per-category layout record.
func (r *ddbRepository) SaveLayout(ctx context.Context, layout domain.Layout) error {
	item, err := attributevalue.MarshalMap(ddbLayout{
		PK:          layoutPK(layout.OwnerID, layout.Category),
		SK:          metadataSK,
		UserID:      layout.OwnerID,
		Category:    layout.Category,
		Connections: layout.ConnectionsRef,
		UpdatedAt:   layout.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal layout item")
	}
	_, err = r.dbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return appErrors.Wrap(err, "failed to put layout item")
	}
	return nil
}

// FindLayout retrieves the layout record for one owner's category.
// Returns (nil, nil) when absent.
func (r *ddbRepository) FindLayout(ctx context.Context, ownerID, category string) (*domain.Layout, error) {
	result, err := r.dbClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: layoutPK(ownerID, category)},
			"SK": &types.AttributeValueMemberS{Value: metadataSK},
		},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to get layout item")
	}
	if result.Item == nil {
		return nil, nil
	}

	var item ddbLayout
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, appErrors.NewMalformed("failed to unmarshal layout item", err)
	}
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	return &domain.Layout{
		OwnerID:        item.UserID,
		Category:       item.Category,
		ConnectionsRef: item.Connections,
		UpdatedAt:      updatedAt,
	}, nil
}

// toDDBNote converts a domain note to its single-table item shape.
func toDDBNote(note domain.Note) ddbNote {
	item := ddbNote{
		PK:        notePK(note.OwnerID, note.ID),
		SK:        metadataSK,
		GSI1PK:    userGSI1PK(note.OwnerID),
		GSI1SK:    updatedSortKey(note.UpdatedAt),
		NoteID:    note.ID,
		UserID:    note.OwnerID,
		Title:     note.Title,
		Category:  note.Category,
		Content:   note.Content,
		IsPublic:  note.IsPublic,
		CreatedAt: note.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: note.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if len(note.Blocks) > 0 {
		if data, err := json.Marshal(note.Blocks); err == nil {
			item.BlocksData = string(data)
		}
	}
	if len(note.Tags) > 0 {
		if data, err := json.Marshal(note.Tags); err == nil {
			item.TagsStr = string(data)
		}
	}
	if note.Source != nil {
		if data, err := json.Marshal(note.Source); err == nil {
			item.MetadataStr = string(data)
		}
	}
	if note.Position != nil {
		if data, err := json.Marshal(note.Position); err == nil {
			item.Position = string(data)
		}
	}
	return item
}

// toDomainNote converts a stored item back to the domain shape. Malformed
// serialized sub-fields degrade to their zero values rather than failing
// the whole read.
func toDomainNote(item ddbNote) domain.Note {
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)

	note := domain.Note{
		ID:        item.NoteID,
		OwnerID:   item.UserID,
		Title:     item.Title,
		Category:  item.Category,
		Content:   item.Content,
		IsPublic:  item.IsPublic,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	note.Blocks = chunk.ParseBlocks(item.BlocksData, item.Content)
	if item.TagsStr != "" {
		var tags []string
		if err := json.Unmarshal([]byte(item.TagsStr), &tags); err == nil {
			note.Tags = tags
		}
	}
	if item.MetadataStr != "" {
		var source domain.SourceMetadata
		if err := json.Unmarshal([]byte(item.MetadataStr), &source); err == nil {
			note.Source = &source
		}
	}
	if item.Position != "" {
		var pos domain.Position
		if err := json.Unmarshal([]byte(item.Position), &pos); err == nil && pos.IsFinite() {
			note.Position = &pos
		}
	}
	return note
}
