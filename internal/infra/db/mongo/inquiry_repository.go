package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaininquiry "venue/internal/domain/inquiry"
)

type InquiryRepository struct {
	col *mongo.Collection
}

func NewInquiryRepository(db *mongo.Database) *InquiryRepository {
	return &InquiryRepository{col: db.Collection("agg_inquiry")}
}

func (r *InquiryRepository) ByID(ctx context.Context, id domaininquiry.InquiryID) (*domaininquiry.Inquiry, error) {
	var doc inquiryDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaininquiry.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *InquiryRepository) Save(ctx context.Context, in *domaininquiry.Inquiry) error {
	doc := newInquiryDocument(in)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

type inquiryDocument struct {
	ID        string `bson:"_id"`
	Name      string `bson:"name"`
	Email     string `bson:"email"`
	Phone     string `bson:"phone,omitempty"`
	Message   string `bson:"message"`
	Locale    string `bson:"locale,omitempty"`
	CreatedAt int64  `bson:"created_at"`
}

func newInquiryDocument(in *domaininquiry.Inquiry) inquiryDocument {
	return inquiryDocument{
		ID:        string(in.ID),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
		Locale:    in.Locale,
		CreatedAt: in.CreatedAt.UnixMilli(),
	}
}

func (d inquiryDocument) toAggregate() *domaininquiry.Inquiry {
	return &domaininquiry.Inquiry{
		ID:        domaininquiry.InquiryID(d.ID),
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Message:   d.Message,
		Locale:    d.Locale,
		CreatedAt: time.UnixMilli(d.CreatedAt).UTC(),
	}
}

var _ domaininquiry.Repository = (*InquiryRepository)(nil)
