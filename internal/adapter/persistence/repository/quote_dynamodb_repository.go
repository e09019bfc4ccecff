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

type quoteItem struct {
	ID         string  `dynamodbav:"id"`
	BookingID  string  `dynamodbav:"booking_id"`
	CustomerID string  `dynamodbav:"customer_id"`
	Total      float64 `dynamodbav:"total"`
	Status     string  `dynamodbav:"status"`
	CreatedAt  string  `dynamodbav:"created_at"`
	UpdatedAt  string  `dynamodbav:"updated_at"`
}

// QuoteDynamoRepository persists Quote entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: booking_id-index (PK: booking_id)
//
// The booking's active_quote_id attribute is the "one active quote per
// booking" guard; it is set and cleared in the same transaction as the quote.
type QuoteDynamoRepository struct {
	ddb    DynamoAPI
	tables Tables
}

var _ interfaces.IQuoteRepository = (*QuoteDynamoRepository)(nil)

func NewQuoteDynamoRepository(ddb DynamoAPI, tables Tables) *QuoteDynamoRepository {
	return &QuoteDynamoRepository{ddb: ddb, tables: tables}
}

func (r *QuoteDynamoRepository) CreateForBooking(ctx context.Context, q entities.Quote) (entities.Quote, error) {
	av, err := attributevalue.MarshalMap(toQuoteItem(q))
	if err != nil {
		return entities.Quote{}, errors.Trace(err)
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:                aws.String(r.tables.Quotes),
					Item:                     av,
					ConditionExpression:      aws.String("attribute_not_exists(#id)"),
					ExpressionAttributeNames: map[string]string{"#id": "id"},
				},
			},
			{
				Update: &types.Update{
					TableName:           aws.String(r.tables.Bookings),
					Key:                 idKey(q.BookingID),
					ConditionExpression: aws.String("attribute_exists(#id) AND #status = :confirmed AND attribute_not_exists(#active_quote_id)"),
					UpdateExpression:    aws.String("SET #active_quote_id = :qid"),
					ExpressionAttributeNames: map[string]string{
						"#id":              "id",
						"#status":          "status",
						"#active_quote_id": "active_quote_id",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":confirmed": str(string(entities.BookingStatusConfirmed)),
						":qid":       str(q.ID),
					},
				},
			},
		},
	})
	if err != nil {
		if conditionFailed(err) {
			return entities.Quote{}, interfaces.ErrStaleWrite
		}
		return entities.Quote{}, errors.Annotatef(err, "creating quote %s", q.ID)
	}
	return q, nil
}

func (r *QuoteDynamoRepository) GetByID(ctx context.Context, id string) (entities.Quote, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tables.Quotes),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Quote{}, errors.Annotatef(err, "getting quote %s", id)
	}
	if len(out.Item) == 0 {
		return entities.Quote{}, nil
	}
	return unmarshalQuote(out.Item)
}

func (r *QuoteDynamoRepository) GetByBookingID(ctx context.Context, bookingID string) (entities.Quote, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tables.Quotes),
		IndexName:              aws.String(quotesBookingIndex),
		KeyConditionExpression: aws.String("booking_id = :bid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":bid": str(bookingID),
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return entities.Quote{}, errors.Annotatef(err, "querying quote of booking %s", bookingID)
	}
	if len(out.Items) == 0 {
		return entities.Quote{}, nil
	}
	return unmarshalQuote(out.Items[0])
}

func (r *QuoteDynamoRepository) ApproveWithBilling(ctx context.Context, quoteID string, billing entities.Billing, at time.Time) (entities.Quote, error) {
	billingAV, err := attributevalue.MarshalMap(toBillingItem(billing))
	if err != nil {
		return entities.Quote{}, errors.Trace(err)
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName:           aws.String(r.tables.Quotes),
					Key:                 idKey(quoteID),
					ConditionExpression: aws.String("attribute_exists(#id) AND #status = :pending"),
					UpdateExpression:    aws.String("SET #status = :approved, #updated_at = :updated_at"),
					ExpressionAttributeNames: map[string]string{
						"#id":         "id",
						"#status":     "status",
						"#updated_at": "updated_at",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":pending":    str(string(entities.QuoteStatusPending)),
						":approved":   str(string(entities.QuoteStatusApproved)),
						":updated_at": str(formatTime(at)),
					},
				},
			},
			{
				Put: &types.Put{
					TableName:                aws.String(r.tables.Billings),
					Item:                     billingAV,
					ConditionExpression:      aws.String("attribute_not_exists(#id)"),
					ExpressionAttributeNames: map[string]string{"#id": "id"},
				},
			},
		},
	})
	if err != nil {
		if conditionFailed(err) {
			return entities.Quote{}, interfaces.ErrStaleWrite
		}
		return entities.Quote{}, errors.Annotatef(err, "approving quote %s", quoteID)
	}
	return r.GetByID(ctx, quoteID)
}

func (r *QuoteDynamoRepository) DeletePending(ctx context.Context, q entities.Quote) error {
	_, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Delete: &types.Delete{
					TableName:           aws.String(r.tables.Quotes),
					Key:                 idKey(q.ID),
					ConditionExpression: aws.String("attribute_exists(#id) AND #status = :pending"),
					ExpressionAttributeNames: map[string]string{
						"#id":     "id",
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":pending": str(string(entities.QuoteStatusPending)),
					},
				},
			},
			{
				Update: &types.Update{
					TableName:           aws.String(r.tables.Bookings),
					Key:                 idKey(q.BookingID),
					ConditionExpression: aws.String("#active_quote_id = :qid"),
					UpdateExpression:    aws.String("REMOVE #active_quote_id"),
					ExpressionAttributeNames: map[string]string{
						"#active_quote_id": "active_quote_id",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":qid": str(q.ID),
					},
				},
			},
		},
	})
	if err != nil {
		if conditionFailed(err) {
			return interfaces.ErrStaleWrite
		}
		return errors.Annotatef(err, "deleting quote %s", q.ID)
	}
	return nil
}

func unmarshalQuote(raw map[string]types.AttributeValue) (entities.Quote, error) {
	var it quoteItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return entities.Quote{}, errors.Trace(err)
	}
	return entities.Quote{
		ID:         it.ID,
		BookingID:  it.BookingID,
		CustomerID: it.CustomerID,
		Total:      it.Total,
		Status:     entities.QuoteStatus(it.Status),
		CreatedAt:  parseTime(it.CreatedAt),
		UpdatedAt:  parseTime(it.UpdatedAt),
	}, nil
}

func toQuoteItem(q entities.Quote) quoteItem {
	return quoteItem{
		ID:         q.ID,
		BookingID:  q.BookingID,
		CustomerID: q.CustomerID,
		Total:      q.Total,
		Status:     string(q.Status),
		CreatedAt:  formatTime(q.CreatedAt),
		UpdatedAt:  formatTime(q.UpdatedAt),
	}
}
