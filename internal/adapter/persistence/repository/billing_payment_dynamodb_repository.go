package repository

import (
	"context"
	"encoding/json"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/juju/errors"
)

type billingItem struct {
	ID         string  `dynamodbav:"id"`
	QuoteID    string  `dynamodbav:"quote_id"`
	BookingID  string  `dynamodbav:"booking_id"`
	CustomerID string  `dynamodbav:"customer_id"`
	Total      float64 `dynamodbav:"total"`
	Status     string  `dynamodbav:"status"`
	CreatedAt  string  `dynamodbav:"created_at"`
	PaidAt     string  `dynamodbav:"paid_at,omitempty"`
}

type paymentItem struct {
	ID                 string  `dynamodbav:"id"`
	BillingID          string  `dynamodbav:"billing_id"`
	Amount             float64 `dynamodbav:"amount"`
	PaidAt             string  `dynamodbav:"paid_at"`
	Provider           string  `dynamodbav:"provider,omitempty"`
	ProviderPaymentID  string  `dynamodbav:"provider_payment_id,omitempty"`
	ProviderPayloadRaw string  `dynamodbav:"provider_payload_raw,omitempty"`
}

// BillingPaymentDynamoRepository persists Billing and Payment entities in DynamoDB.
//
// Table requirements:
//   - billings PK: id (string); GSI quote_id-index (PK: quote_id)
//   - payments PK: id (string); GSI billing_id-index (PK: billing_id)
type BillingPaymentDynamoRepository struct {
	ddb    DynamoAPI
	tables Tables
}

var _ interfaces.IBillingPaymentRepository = (*BillingPaymentDynamoRepository)(nil)

func NewBillingPaymentDynamoRepository(ddb DynamoAPI, tables Tables) *BillingPaymentDynamoRepository {
	return &BillingPaymentDynamoRepository{ddb: ddb, tables: tables}
}

func (r *BillingPaymentDynamoRepository) GetBillingByID(ctx context.Context, id string) (entities.Billing, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tables.Billings),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Billing{}, errors.Annotatef(err, "getting billing %s", id)
	}
	if len(out.Item) == 0 {
		return entities.Billing{}, nil
	}
	return unmarshalBilling(out.Item)
}

func (r *BillingPaymentDynamoRepository) GetBillingByQuoteID(ctx context.Context, quoteID string) (entities.Billing, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tables.Billings),
		IndexName:              aws.String(billingsQuoteIndex),
		KeyConditionExpression: aws.String("quote_id = :qid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":qid": str(quoteID),
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return entities.Billing{}, errors.Annotatef(err, "querying billing of quote %s", quoteID)
	}
	if len(out.Items) == 0 {
		return entities.Billing{}, nil
	}
	return unmarshalBilling(out.Items[0])
}

func (r *BillingPaymentDynamoRepository) GetPaymentByBillingID(ctx context.Context, billingID string) (entities.Payment, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tables.Payments),
		IndexName:              aws.String(paymentsBillingIndex),
		KeyConditionExpression: aws.String("billing_id = :bid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":bid": str(billingID),
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return entities.Payment{}, errors.Annotatef(err, "querying payment of billing %s", billingID)
	}
	if len(out.Items) == 0 {
		return entities.Payment{}, nil
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return entities.Payment{}, errors.Trace(err)
	}
	return fromPaymentItem(it), nil
}

func (r *BillingPaymentDynamoRepository) SettleWithPayment(ctx context.Context, billingID string, p entities.Payment) (entities.Billing, error) {
	paymentAV, err := attributevalue.MarshalMap(toPaymentItem(p))
	if err != nil {
		return entities.Billing{}, errors.Trace(err)
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName:           aws.String(r.tables.Billings),
					Key:                 idKey(billingID),
					ConditionExpression: aws.String("attribute_exists(#id) AND #status = :unpaid"),
					UpdateExpression:    aws.String("SET #status = :paid, #paid_at = :paid_at"),
					ExpressionAttributeNames: map[string]string{
						"#id":      "id",
						"#status":  "status",
						"#paid_at": "paid_at",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":unpaid":  str(string(entities.BillingStatusUnpaid)),
						":paid":    str(string(entities.BillingStatusPaid)),
						":paid_at": str(formatTime(p.PaidAt)),
					},
				},
			},
			{
				Put: &types.Put{
					TableName:                aws.String(r.tables.Payments),
					Item:                     paymentAV,
					ConditionExpression:      aws.String("attribute_not_exists(#id)"),
					ExpressionAttributeNames: map[string]string{"#id": "id"},
				},
			},
		},
	})
	if err != nil {
		if conditionFailed(err) {
			return entities.Billing{}, interfaces.ErrStaleWrite
		}
		return entities.Billing{}, errors.Annotatef(err, "settling billing %s", billingID)
	}
	return r.GetBillingByID(ctx, billingID)
}

func unmarshalBilling(raw map[string]types.AttributeValue) (entities.Billing, error) {
	var it billingItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return entities.Billing{}, errors.Trace(err)
	}
	return fromBillingItem(it), nil
}

func toBillingItem(b entities.Billing) billingItem {
	it := billingItem{
		ID:         b.ID,
		QuoteID:    b.QuoteID,
		BookingID:  b.BookingID,
		CustomerID: b.CustomerID,
		Total:      b.Total,
		Status:     string(b.Status),
		CreatedAt:  formatTime(b.CreatedAt),
	}
	if b.PaidAt != nil {
		it.PaidAt = formatTime(*b.PaidAt)
	}
	return it
}

func fromBillingItem(it billingItem) entities.Billing {
	b := entities.Billing{
		ID:         it.ID,
		QuoteID:    it.QuoteID,
		BookingID:  it.BookingID,
		CustomerID: it.CustomerID,
		Total:      it.Total,
		Status:     entities.BillingStatus(it.Status),
		CreatedAt:  parseTime(it.CreatedAt),
	}
	if it.PaidAt != "" {
		paidAt := parseTime(it.PaidAt)
		b.PaidAt = &paidAt
	}
	return b
}

func toPaymentItem(p entities.Payment) paymentItem {
	return paymentItem{
		ID:                 p.ID,
		BillingID:          p.BillingID,
		Amount:             p.Amount,
		PaidAt:             formatTime(p.PaidAt),
		Provider:           p.Provider,
		ProviderPaymentID:  p.ProviderPaymentID,
		ProviderPayloadRaw: string(p.ProviderPayloadRaw),
	}
}

func fromPaymentItem(it paymentItem) entities.Payment {
	p := entities.Payment{
		ID:                it.ID,
		BillingID:         it.BillingID,
		Amount:            it.Amount,
		PaidAt:            parseTime(it.PaidAt),
		Provider:          it.Provider,
		ProviderPaymentID: it.ProviderPaymentID,
	}
	if it.ProviderPayloadRaw != "" {
		p.ProviderPayloadRaw = json.RawMessage(it.ProviderPayloadRaw)
	}
	return p
}
