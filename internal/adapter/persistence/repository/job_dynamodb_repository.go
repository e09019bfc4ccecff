package repository

import (
	"context"
	"time"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/juju/errors"
)

type jobNoteItem struct {
	AuthorID  string `dynamodbav:"author_id"`
	Text      string `dynamodbav:"text"`
	CreatedAt string `dynamodbav:"created_at"`
}

type jobItem struct {
	ID        string        `dynamodbav:"id"`
	BookingID string        `dynamodbav:"booking_id"`
	Stage     string        `dynamodbav:"stage"`
	Notes     []jobNoteItem `dynamodbav:"notes"`
	CreatedAt string        `dynamodbav:"created_at"`
	UpdatedAt string        `dynamodbav:"updated_at"`
}

// JobDynamoRepository persists Job entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: booking_id-index (PK: booking_id)
type JobDynamoRepository struct {
	ddb    DynamoAPI
	tables Tables
}

var _ interfaces.IJobRepository = (*JobDynamoRepository)(nil)

func NewJobDynamoRepository(ddb DynamoAPI, tables Tables) *JobDynamoRepository {
	return &JobDynamoRepository{ddb: ddb, tables: tables}
}

func (r *JobDynamoRepository) GetByID(ctx context.Context, id string) (entities.Job, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tables.Jobs),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Job{}, errors.Annotatef(err, "getting job %s", id)
	}
	if len(out.Item) == 0 {
		return entities.Job{}, nil
	}
	return unmarshalJob(out.Item)
}

func (r *JobDynamoRepository) GetByBookingID(ctx context.Context, bookingID string) (entities.Job, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tables.Jobs),
		IndexName:              aws.String(jobsBookingIndex),
		KeyConditionExpression: aws.String("booking_id = :bid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":bid": str(bookingID),
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return entities.Job{}, errors.Annotatef(err, "querying job of booking %s", bookingID)
	}
	if len(out.Items) == 0 {
		return entities.Job{}, nil
	}
	return unmarshalJob(out.Items[0])
}

func (r *JobDynamoRepository) UpdateStage(ctx context.Context, id string, from, to entities.JobStage, at time.Time) (entities.Job, error) {
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tables.Jobs),
		Key:                 idKey(id),
		ConditionExpression: aws.String("attribute_exists(#id) AND #stage = :from"),
		UpdateExpression:    aws.String("SET #stage = :to, #updated_at = :updated_at"),
		ExpressionAttributeNames: map[string]string{
			"#id":         "id",
			"#stage":      "stage",
			"#updated_at": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":from":       str(string(from)),
			":to":         str(string(to)),
			":updated_at": str(formatTime(at)),
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		if conditionFailed(err) {
			return entities.Job{}, interfaces.ErrStaleWrite
		}
		return entities.Job{}, errors.Annotatef(err, "updating stage of job %s", id)
	}
	return unmarshalJob(out.Attributes)
}

func (r *JobDynamoRepository) AppendNote(ctx context.Context, id string, note entities.JobNote) (entities.Job, error) {
	noteAV, err := attributevalue.Marshal([]jobNoteItem{toJobNoteItem(note)})
	if err != nil {
		return entities.Job{}, errors.Trace(err)
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tables.Jobs),
		Key:                 idKey(id),
		ConditionExpression: aws.String("attribute_exists(#id)"),
		UpdateExpression:    aws.String("SET #notes = list_append(if_not_exists(#notes, :empty), :note), #updated_at = :updated_at"),
		ExpressionAttributeNames: map[string]string{
			"#id":         "id",
			"#notes":      "notes",
			"#updated_at": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":empty":      &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":note":       noteAV,
			":updated_at": str(formatTime(note.CreatedAt)),
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		if conditionFailed(err) {
			return entities.Job{}, nil
		}
		return entities.Job{}, errors.Annotatef(err, "appending note to job %s", id)
	}
	return unmarshalJob(out.Attributes)
}

func unmarshalJob(raw map[string]types.AttributeValue) (entities.Job, error) {
	var it jobItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return entities.Job{}, errors.Trace(err)
	}
	return fromJobItem(it), nil
}

func toJobNoteItem(n entities.JobNote) jobNoteItem {
	return jobNoteItem{AuthorID: n.AuthorID, Text: n.Text, CreatedAt: formatTime(n.CreatedAt)}
}

func toJobItem(j entities.Job) jobItem {
	notes := make([]jobNoteItem, 0, len(j.Notes))
	for _, n := range j.Notes {
		notes = append(notes, toJobNoteItem(n))
	}
	return jobItem{
		ID:        j.ID,
		BookingID: j.BookingID,
		Stage:     string(j.Stage),
		Notes:     notes,
		CreatedAt: formatTime(j.CreatedAt),
		UpdatedAt: formatTime(j.UpdatedAt),
	}
}

func fromJobItem(it jobItem) entities.Job {
	notes := make([]entities.JobNote, 0, len(it.Notes))
	for _, n := range it.Notes {
		notes = append(notes, entities.JobNote{AuthorID: n.AuthorID, Text: n.Text, CreatedAt: parseTime(n.CreatedAt)})
	}
	return entities.Job{
		ID:        it.ID,
		BookingID: it.BookingID,
		Stage:     entities.JobStage(it.Stage),
		Notes:     notes,
		CreatedAt: parseTime(it.CreatedAt),
		UpdatedAt: parseTime(it.UpdatedAt),
	}
}
