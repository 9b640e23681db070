package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"venue/internal/app/middleware"
	"venue/internal/app/uow"
	domaininquiry "venue/internal/domain/inquiry"
)

func TestInquiryDocumentRoundTrip(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	in, err := domaininquiry.Submit(domaininquiry.SubmitParams{
		ID: "inq-7", Name: "Ana", Email: "ana@example.md", Message: "Salut", Locale: "ro", CreatedAt: at,
	})
	require.NoError(t, err)

	raw, err := bson.Marshal(newInquiryDocument(in))
	require.NoError(t, err)
	var doc inquiryDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))

	got := doc.toAggregate()
	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, "ana@example.md", got.Email)
	assert.True(t, got.CreatedAt.Equal(at))
	assert.Empty(t, got.PendingEvents())

	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "phone")
	assert.Equal(t, "inq-7", fields["_id"])
}

func TestIdempotencyDocument(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	rec := middleware.IdempotencyRecord{Key: "k-1", Command: "inquiries.submit", Payload: []byte(`{"inquiry_id":"x"}`), OccurredAt: at}
	doc := newIdempotencyDocument(rec, at.Add(time.Second))

	assert.Equal(t, "k-1", doc.ID)
	assert.Equal(t, rec, doc.toRecord())
}

func TestFactoryRequiresDatabase(t *testing.T) {
	_, err := Factory{}.Begin(context.Background(), uow.TxOptions{})
	assert.ErrorIs(t, err, ErrUnitOfWorkNotConfigured)
}
