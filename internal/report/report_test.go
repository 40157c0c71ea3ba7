package report

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasrat/countryscrape/internal/scrape"
	"github.com/kasrat/countryscrape/internal/store"
)

// stubStore implements store.Provider over fixed rows.
type stubStore struct {
	rows      []store.Row
	total     *int64
	sampleErr error
	totalErr  error
}

func (s *stubStore) Init(context.Context) error                          { return nil }
func (s *stubStore) WriteBatch(context.Context, []scrape.Country) error  { return nil }
func (s *stubStore) Close() error                                        { return nil }
func (s *stubStore) TotalPopulation(context.Context) (*int64, error)     { return s.total, s.totalErr }
func (s *stubStore) Sample(_ context.Context, n int) ([]store.Row, error) {
	if s.sampleErr != nil {
		return nil, s.sampleErr
	}
	if len(s.rows) > n {
		return s.rows[:n], nil
	}
	return s.rows, nil
}

func strPtr(s string) *string { return &s }
func intPtr(n int64) *int64   { return &n }

func TestPrintSampleAndTotal(t *testing.T) {
	t.Parallel()

	total := int64(84468)
	st := &stubStore{
		rows: []store.Row{
			{ID: 1, Name: "Andorra", Capital: strPtr("Andorra la Vella"), Population: intPtr(84000), Area: intPtr(468)},
			{ID: 2, Name: "Atlantis"},
		},
		total: &total,
	}

	var buf bytes.Buffer
	require.NoError(t, New(st, &buf).Print(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "id=1 | Country=Andorra | Capital=Andorra la Vella | Population=84000 | Area(km^2)=468")
	assert.Contains(t, out, "id=2 | Country=Atlantis | Capital=NULL | Population=NULL | Area(km^2)=NULL")
	assert.Contains(t, out, "Total population across stored rows: 84468")
}

func TestPrintNullTotal(t *testing.T) {
	t.Parallel()

	st := &stubStore{rows: []store.Row{{ID: 1, Name: "Atlantis"}}}

	var buf bytes.Buffer
	require.NoError(t, New(st, &buf).Print(context.Background()))
	assert.Contains(t, buf.String(), "Total population across stored rows: NULL")
}

func TestPrintPropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	st := &stubStore{sampleErr: errors.New("table missing")}
	require.Error(t, New(st, &buf).Print(context.Background()))

	st = &stubStore{totalErr: errors.New("aggregate failed")}
	require.Error(t, New(st, &buf).Print(context.Background()))
}
