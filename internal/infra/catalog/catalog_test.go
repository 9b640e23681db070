package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainpricing "venue/internal/domain/pricing"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	p := c.Pricing
	assert.Equal(t, "MDL", p.Currency)
	assert.True(t, p.BaseNightlyRate.Equal(decimal.NewFromInt(1200)))
	assert.True(t, p.WeekendSurcharge.Equal(decimal.NewFromInt(300)))
	assert.True(t, p.ExtraGuestRate.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 1, p.MinNights)
	assert.True(t, p.Multiplier(time.July).Equal(decimal.RequireFromString("1.25")))
	assert.True(t, p.Multiplier(time.January).Equal(decimal.RequireFromString("0.85")))
	assert.True(t, p.Multiplier(time.October).Equal(decimal.NewFromInt(1)))

	ids := make([]string, 0, len(p.Extras))
	for _, e := range p.Extras {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"bbq", "bike", "breakfast", "latecheckout"}, ids)
	assert.Equal(t, domainpricing.ModePerPerson, p.Extras[2].Mode)

	assert.NotEmpty(t, c.Menu.Items)
	assert.NoError(t, c.Menu.Validate())
}

func TestDefaultCatalogPricesWeekendStay(t *testing.T) {
	q, err := domainpricing.ComputeQuote(domainpricing.QuoteRequest{
		CheckIn:  time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2024, 7, 7, 0, 0, 0, 0, time.UTC),
		Guests:   4,
		Extras:   []string{"bbq"},
	}, Default().Pricing)
	require.NoError(t, err)
	assert.Equal(t, int64(4400), q.Total)
	assert.Equal(t, int64(1800), q.AverageNightlyRate)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "syntax", doc: `{"pricing":`, want: "unexpected EOF"},
		{name: "unknown field", doc: `{"pricing":{"currency":"MDL","tax":1}}`, want: `unknown field "tax"`},
		{name: "bad mode", doc: `{"pricing":{"currency":"MDL","base_nightly_rate":100,"min_nights":1,
			"extras":[{"id":"x","label":"X","mode":"hourly","amount":1}]},"menu":{}}`, want: "unknown mode"},
		{name: "zero base rate", doc: `{"pricing":{"currency":"MDL","min_nights":1},"menu":{}}`, want: "base nightly rate must be positive"},
		{name: "menu category", doc: `{"pricing":{"currency":"MDL","base_nightly_rate":100,"min_nights":1},
			"menu":{"items":[{"id":"a","name":"A","category":"none","price":1}]}}`, want: `unknown category "none"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCatalog)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	doc := `{
		"pricing": {"currency": "EUR", "base_nightly_rate": 80.5, "min_nights": 2,
			"seasons": [{"name": "all", "months": [1,2,3,4,5,6,7,8,9,10,11,12], "multiplier": 1}]},
		"menu": {"currency": "EUR", "categories": [{"id": "wine", "title": "Wine"}],
			"items": [{"id": "rose", "name": "Rosé", "category": "wine", "price": 6.5}]}
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := Load(context.Background(), FileSource{Path: path}, nil)
	require.NoError(t, err)
	assert.Equal(t, "EUR", c.Pricing.Currency)
	assert.Equal(t, 2, c.Pricing.MinNights)
	assert.True(t, c.Pricing.BaseNightlyRate.Equal(decimal.RequireFromString("80.5")))
	assert.True(t, c.Menu.Items[0].Price.Equal(decimal.RequireFromString("6.5")))
}

func TestLoadFailsFastOnPermanentErrors(t *testing.T) {
	start := time.Now()
	_, err := Load(context.Background(), FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"pricing":{}}`), 0o600))
	_, err = Load(context.Background(), FileSource{Path: path}, nil)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestEmbeddedSource(t *testing.T) {
	c, err := Load(context.Background(), EmbeddedSource{}, nil)
	require.NoError(t, err)
	assert.Equal(t, Default().Pricing.Currency, c.Pricing.Currency)
}

func TestNewS3SourceValidates(t *testing.T) {
	_, err := NewS3Source("", false, "k", "s", "bucket", "catalog.json")
	assert.Error(t, err)
	_, err = NewS3Source("localhost:9000", false, "k", "s", "", "catalog.json")
	assert.Error(t, err)
	_, err = NewS3Source("localhost:9000", false, "k", "s", "bucket", " / ")
	assert.Error(t, err)

	src, err := NewS3Source("http://minio:9000", false, "k", "s", "venue", "/site/catalog.json")
	require.NoError(t, err)
	assert.Equal(t, "s3://venue/site/catalog.json", src.Name())
}
