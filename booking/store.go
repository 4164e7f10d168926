package booking

import (
	"context"
	"errors"
	"time"

	"dorax/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StatusUpdate is the payload of a guarded transition. Only non-zero fields
// are written; a zero Status keeps the current one (used when attaching a
// payment order, which is not a transition).
type StatusUpdate struct {
	Status          models.BookingStatus
	Timestamp       *time.Time // stamped into the status-specific *At field
	RejectionReason string
	OrderID         string
	PaymentID       string
	Signature       string
}

// Store persists bookings. UpdateStatusIf is the single write path for
// transitions: it must apply the update atomically only when the current
// status is one of from, so a concurrent loser observes ErrInvalidState
// instead of overwriting.
type Store interface {
	Insert(ctx context.Context, b models.Booking) error
	FindByID(ctx context.Context, id string) (models.Booking, error)
	FindByToken(ctx context.Context, token string) (models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]models.Booking, error)
	ListByExperience(ctx context.Context, experienceID string) ([]models.Booking, error)
	UpdateStatusIf(ctx context.Context, id string, from []models.BookingStatus, upd StatusUpdate) (models.Booking, error)
}

// MongoStore is the production Store over the bookings collection.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

func (s *MongoStore) Insert(ctx context.Context, b models.Booking) error {
	_, err := s.col.InsertOne(ctx, b)
	return err
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (models.Booking, error) {
	var b models.Booking
	err := s.col.FindOne(ctx, filter).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Booking{}, ErrNotFound
	}
	return b, err
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (models.Booking, error) {
	return s.findOne(ctx, bson.M{"bookingid": id})
}

func (s *MongoStore) FindByToken(ctx context.Context, token string) (models.Booking, error) {
	return s.findOne(ctx, bson.M{"bookingtoken": token})
}

func (s *MongoStore) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	cur, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.M{"createdat": -1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var bookings []models.Booking
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *MongoStore) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.list(ctx, bson.M{"userid": userID})
}

func (s *MongoStore) ListByMerchant(ctx context.Context, merchantID string) ([]models.Booking, error) {
	return s.list(ctx, bson.M{"merchantid": merchantID})
}

func (s *MongoStore) ListByExperience(ctx context.Context, experienceID string) ([]models.Booking, error) {
	return s.list(ctx, bson.M{"experienceid": experienceID})
}

// UpdateStatusIf issues one conditional FindOneAndUpdate; the status guard
// lives in the filter, which is what makes concurrent transitions race-safe.
func (s *MongoStore) UpdateStatusIf(ctx context.Context, id string, from []models.BookingStatus, upd StatusUpdate) (models.Booking, error) {
	set := bson.M{}
	if upd.Status != "" {
		set["status"] = upd.Status
	}
	if upd.Timestamp != nil {
		set[timestampField(upd.Status)] = *upd.Timestamp
	}
	if upd.RejectionReason != "" {
		set["rejectionreason"] = upd.RejectionReason
	}
	if upd.OrderID != "" {
		set["razorpayorderid"] = upd.OrderID
	}
	if upd.PaymentID != "" {
		set["razorpaypaymentid"] = upd.PaymentID
		set["razorpaysignature"] = upd.Signature
	}

	res := s.col.FindOneAndUpdate(ctx,
		bson.M{"bookingid": id, "status": bson.M{"$in": from}},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Booking
	err := res.Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the booking does not exist or its status was not in from.
		if _, findErr := s.FindByID(ctx, id); findErr != nil {
			return models.Booking{}, findErr
		}
		return models.Booking{}, ErrInvalidState
	}
	return updated, err
}

func timestampField(status models.BookingStatus) string {
	switch status {
	case models.BookingConfirmed:
		return "confirmedat"
	case models.BookingRejected:
		return "rejectedat"
	case models.BookingCancelled:
		return "cancelledat"
	case models.BookingPaid:
		return "paidat"
	case models.BookingFailed:
		return "failedat"
	case models.BookingCompleted:
		return "completedat"
	default:
		return "updatedat"
	}
}
