package repository

import (
	"context"
	"sort"
	"strconv"
	"time"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/juju/errors"
)

type bookingItem struct {
	ID            string `dynamodbav:"id"`
	CustomerID    string `dynamodbav:"customer_id"`
	CarID         string `dynamodbav:"car_id"`
	ServiceID     string `dynamodbav:"service_id"`
	ScheduledAt   string `dynamodbav:"scheduled_at"`
	Status        string `dynamodbav:"status"`
	TechnicianID  string `dynamodbav:"technician_id,omitempty"`
	RejectReason  string `dynamodbav:"reject_reason,omitempty"`
	ActiveQuoteID string `dynamodbav:"active_quote_id,omitempty"`
	Version       int64  `dynamodbav:"version"`
	CreatedAt     string `dynamodbav:"created_at"`
	UpdatedAt     string `dynamodbav:"updated_at"`
}

// BookingDynamoRepository persists Booking entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: technician_id-scheduled_at-index (PK: technician_id, SK: scheduled_at); sparse
//   - GSI: customer_id-index (PK: customer_id)
//
// Writes are conditional on the stored version. Confirmation writes the
// booking and its job in one transaction.
type BookingDynamoRepository struct {
	ddb    DynamoAPI
	tables Tables
}

var _ interfaces.IBookingRepository = (*BookingDynamoRepository)(nil)

func NewBookingDynamoRepository(ddb DynamoAPI, tables Tables) *BookingDynamoRepository {
	return &BookingDynamoRepository{ddb: ddb, tables: tables}
}

func (r *BookingDynamoRepository) Create(ctx context.Context, b entities.Booking) (entities.Booking, error) {
	av, err := attributevalue.MarshalMap(toBookingItem(b))
	if err != nil {
		return entities.Booking{}, errors.Trace(err)
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tables.Bookings),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.Booking{}, errors.Annotatef(err, "putting booking %s", b.ID)
	}
	return b, nil
}

func (r *BookingDynamoRepository) GetByID(ctx context.Context, id string) (entities.Booking, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tables.Bookings),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Booking{}, errors.Annotatef(err, "getting booking %s", id)
	}
	if len(out.Item) == 0 {
		return entities.Booking{}, nil
	}

	var it bookingItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Booking{}, errors.Trace(err)
	}
	return fromBookingItem(it), nil
}

func (r *BookingDynamoRepository) Update(ctx context.Context, b entities.Booking, expectedVersion int64) (entities.Booking, error) {
	expr, values, names := bookingUpdate(b, expectedVersion)

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tables.Bookings),
		Key:                       idKey(b.ID),
		ConditionExpression:       aws.String("attribute_exists(#id) AND #version = :expected"),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if conditionFailed(err) {
			return entities.Booking{}, interfaces.ErrStaleWrite
		}
		return entities.Booking{}, errors.Annotatef(err, "updating booking %s", b.ID)
	}

	var it bookingItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Booking{}, errors.Trace(err)
	}
	return fromBookingItem(it), nil
}

func (r *BookingDynamoRepository) ConfirmWithJob(ctx context.Context, b entities.Booking, expectedVersion int64, job entities.Job) error {
	jobAV, err := attributevalue.MarshalMap(toJobItem(job))
	if err != nil {
		return errors.Trace(err)
	}
	expr, values, names := bookingUpdate(b, expectedVersion)
	values[":pending"] = str(string(entities.BookingStatusPending))

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName:                 aws.String(r.tables.Bookings),
					Key:                       idKey(b.ID),
					ConditionExpression:       aws.String("attribute_exists(#id) AND #version = :expected AND #status = :pending"),
					UpdateExpression:          aws.String(expr),
					ExpressionAttributeValues: values,
					ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
				},
			},
			{
				Put: &types.Put{
					TableName:                aws.String(r.tables.Jobs),
					Item:                     jobAV,
					ConditionExpression:      aws.String("attribute_not_exists(#id)"),
					ExpressionAttributeNames: map[string]string{"#id": "id"},
				},
			},
		},
	})
	if err != nil {
		if conditionFailed(err) {
			return interfaces.ErrStaleWrite
		}
		return errors.Annotatef(err, "confirming booking %s", b.ID)
	}
	return nil
}

func (r *BookingDynamoRepository) ListActiveByTechnician(ctx context.Context, technicianID string, from, to time.Time) ([]entities.Booking, error) {
	out, err := r.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tables.Bookings),
		IndexName:              aws.String(bookingsTechnicianIndex),
		KeyConditionExpression: aws.String("technician_id = :tid AND scheduled_at BETWEEN :from AND :to"),
		FilterExpression:       aws.String("#status IN (:pending, :confirmed)"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":tid":       str(technicianID),
			":from":      str(formatTime(from)),
			":to":        str(formatTime(to)),
			":pending":   str(string(entities.BookingStatusPending)),
			":confirmed": str(string(entities.BookingStatusConfirmed)),
		},
	})
	if err != nil {
		return nil, errors.Annotatef(err, "querying bookings of technician %s", technicianID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (r *BookingDynamoRepository) List(ctx context.Context, f interfaces.BookingFilter) ([]entities.Booking, error) {
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	var filter *string
	if f.Status != "" {
		names["#status"] = "status"
		values[":status"] = str(string(f.Status))
		filter = aws.String("#status = :status")
	}

	var (
		out []entities.Booking
		err error
	)
	switch {
	case f.CustomerID != "":
		values[":cid"] = str(f.CustomerID)
		if f.TechnicianID != "" {
			names["#tid"] = "technician_id"
			values[":tid"] = str(f.TechnicianID)
			filter = andFilter(filter, "#tid = :tid")
		}
		out, err = r.query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tables.Bookings),
			IndexName:                 aws.String(bookingsCustomerIndex),
			KeyConditionExpression:    aws.String("customer_id = :cid"),
			FilterExpression:          filter,
			ExpressionAttributeNames:  nilIfEmpty(names),
			ExpressionAttributeValues: values,
		})
	case f.TechnicianID != "":
		values[":tid"] = str(f.TechnicianID)
		out, err = r.query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tables.Bookings),
			IndexName:                 aws.String(bookingsTechnicianIndex),
			KeyConditionExpression:    aws.String("technician_id = :tid"),
			FilterExpression:          filter,
			ExpressionAttributeNames:  nilIfEmpty(names),
			ExpressionAttributeValues: values,
		})
	default:
		in := &dynamodb.ScanInput{
			TableName:        aws.String(r.tables.Bookings),
			FilterExpression: filter,
		}
		if len(values) > 0 {
			in.ExpressionAttributeNames = names
			in.ExpressionAttributeValues = values
		}
		out, err = r.scan(ctx, in)
	}
	if err != nil {
		return nil, errors.Annotate(err, "listing bookings")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *BookingDynamoRepository) query(ctx context.Context, in *dynamodb.QueryInput) ([]entities.Booking, error) {
	var out []entities.Booking
	p := dynamodb.NewQueryPaginator(r.ddb, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items, err := unmarshalBookings(page.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (r *BookingDynamoRepository) scan(ctx context.Context, in *dynamodb.ScanInput) ([]entities.Booking, error) {
	var out []entities.Booking
	p := dynamodb.NewScanPaginator(r.ddb, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items, err := unmarshalBookings(page.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

// bookingUpdate builds the SET expression shared by Update and ConfirmWithJob.
// active_quote_id is left alone; the quote repository owns it.
func bookingUpdate(b entities.Booking, expectedVersion int64) (string, map[string]types.AttributeValue, map[string]string) {
	expr := "SET #status = :status, #scheduled_at = :scheduled_at, #updated_at = :updated_at, #version = :next"
	values := map[string]types.AttributeValue{
		":status":       str(string(b.Status)),
		":scheduled_at": str(formatTime(b.ScheduledAt)),
		":updated_at":   str(formatTime(b.UpdatedAt)),
		":expected":     num(strconv.FormatInt(expectedVersion, 10)),
		":next":         num(strconv.FormatInt(expectedVersion+1, 10)),
	}
	names := map[string]string{
		"#status":       "status",
		"#scheduled_at": "scheduled_at",
		"#updated_at":   "updated_at",
		"#version":      "version",
	}
	if b.TechnicianID != "" {
		expr += ", #technician_id = :technician_id"
		values[":technician_id"] = str(b.TechnicianID)
		names["#technician_id"] = "technician_id"
	}
	if b.RejectReason != "" {
		expr += ", #reject_reason = :reject_reason"
		values[":reject_reason"] = str(b.RejectReason)
		names["#reject_reason"] = "reject_reason"
	}
	return expr, values, names
}

func andFilter(existing *string, clause string) *string {
	if existing == nil {
		return aws.String(clause)
	}
	return aws.String(*existing + " AND " + clause)
}

func nilIfEmpty(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}

func unmarshalBookings(raw []map[string]types.AttributeValue) ([]entities.Booking, error) {
	out := make([]entities.Booking, 0, len(raw))
	for _, item := range raw {
		var it bookingItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return nil, err
		}
		out = append(out, fromBookingItem(it))
	}
	return out, nil
}

func toBookingItem(b entities.Booking) bookingItem {
	return bookingItem{
		ID:            b.ID,
		CustomerID:    b.CustomerID,
		CarID:         b.CarID,
		ServiceID:     b.ServiceID,
		ScheduledAt:   formatTime(b.ScheduledAt),
		Status:        string(b.Status),
		TechnicianID:  b.TechnicianID,
		RejectReason:  b.RejectReason,
		ActiveQuoteID: b.ActiveQuoteID,
		Version:       b.Version,
		CreatedAt:     formatTime(b.CreatedAt),
		UpdatedAt:     formatTime(b.UpdatedAt),
	}
}

func fromBookingItem(it bookingItem) entities.Booking {
	return entities.Booking{
		ID:            it.ID,
		CustomerID:    it.CustomerID,
		CarID:         it.CarID,
		ServiceID:     it.ServiceID,
		ScheduledAt:   parseTime(it.ScheduledAt),
		Status:        entities.BookingStatus(it.Status),
		TechnicianID:  it.TechnicianID,
		RejectReason:  it.RejectReason,
		ActiveQuoteID: it.ActiveQuoteID,
		Version:       it.Version,
		CreatedAt:     parseTime(it.CreatedAt),
		UpdatedAt:     parseTime(it.UpdatedAt),
	}
}
