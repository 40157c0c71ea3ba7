package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasrat/countryscrape/internal/config"
	"github.com/kasrat/countryscrape/internal/fetcher"
	"github.com/kasrat/countryscrape/internal/scrape"
	"github.com/kasrat/countryscrape/internal/store"
)

const threeCountriesHTML = `<html><body><section id="countries">
<div class="country">
  <h3 class="country-name">Andorra</h3>
  <span class="country-capital">Andorra la Vella</span>
  <span class="country-population">84000</span>
  <span class="country-area">468.0</span>
</div>
<div class="country">
  <h3 class="country-name">United Arab Emirates</h3>
  <span class="country-capital">Abu Dhabi</span>
  <span class="country-population">4,975,593</span>
  <span class="country-area">82880.0</span>
</div>
<div class="country">
  <h3 class="country-name">Afghanistan</h3>
  <span class="country-capital">Kabul</span>
  <span class="country-population">29121286</span>
  <span class="country-area">647500.0</span>
</div>
</section></body></html>`

func newTestApp(t *testing.T, sourceURL string) (*App, store.Provider, *bytes.Buffer) {
	t.Helper()

	cfg := config.Config{
		Source: config.SourceConfig{
			URL:       sourceURL,
			UserAgent: "countryscrape-test/1.0",
			Timeout:   5 * time.Second,
			Limit:     20,
		},
	}
	st, err := store.NewSQLiteProvider(filepath.Join(t.TempDir(), "countries.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	var buf bytes.Buffer
	f := fetcher.New(fetcher.Config{UserAgent: cfg.Source.UserAgent, Timeout: cfg.Source.Timeout}, nil)
	return NewWithServices(cfg, st, f, &buf, nil), st, &buf
}

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunEndToEnd(t *testing.T) {
	srv := serveHTML(t, threeCountriesHTML)
	a, st, buf := newTestApp(t, srv.URL)

	require.NoError(t, a.Run(context.Background()))

	rows, err := st.Sample(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Andorra", rows[0].Name)
	assert.Equal(t, "Afghanistan", rows[2].Name)

	total, err := st.TotalPopulation(context.Background())
	require.NoError(t, err)
	require.NotNil(t, total)
	assert.Equal(t, int64(84000+4975593+29121286), *total)

	out := buf.String()
	assert.Contains(t, out, "Scraping and saving completed successfully.")
	assert.Contains(t, out, "id=1 | Country=Andorra")
	assert.Contains(t, out, "id=3 | Country=Afghanistan")
	assert.Contains(t, out, "Total population across stored rows: 34180879")
}

func TestRunHaltsOnEmptyExtraction(t *testing.T) {
	srv := serveHTML(t, `<html><body><p>no country blocks here</p></body></html>`)
	a, st, buf := newTestApp(t, srv.URL)

	require.NoError(t, a.Run(context.Background()))

	rows, err := st.Sample(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, rows, "no write may happen on empty extraction")
	assert.Contains(t, buf.String(), "No data found to save. Program halted.")
}

func TestRunHaltsOnFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	a, st, buf := newTestApp(t, srv.URL)

	require.NoError(t, a.Run(context.Background()))

	rows, err := st.Sample(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, rows, "no write may happen on fetch failure")
	assert.Contains(t, buf.String(), "Could not access website or content retrieval failed. Program halted.")
}

func TestRunRespectsRecordLimit(t *testing.T) {
	srv := serveHTML(t, threeCountriesHTML)
	a, st, _ := newTestApp(t, srv.URL)
	a.cfg.Source.Limit = 2

	require.NoError(t, a.Run(context.Background()))

	rows, err := st.Sample(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "United Arab Emirates", rows[1].Name)
}

// failingStore wraps a Provider and fails selected operations.
type failingStore struct {
	store.Provider
	initErr  error
	writeErr error
}

func (f *failingStore) Init(ctx context.Context) error {
	if f.initErr != nil {
		return f.initErr
	}
	return f.Provider.Init(ctx)
}

func (f *failingStore) WriteBatch(ctx context.Context, records []scrape.Country) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.Provider.WriteBatch(ctx, records)
}

func TestRunReturnsErrorOnStoreInitFailure(t *testing.T) {
	srv := serveHTML(t, threeCountriesHTML)
	a, st, buf := newTestApp(t, srv.URL)
	a.store = &failingStore{Provider: st, initErr: errors.New("disk full")}

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Error initializing/clearing database:")
}

func TestRunReturnsErrorOnWriteFailure(t *testing.T) {
	srv := serveHTML(t, threeCountriesHTML)
	a, st, buf := newTestApp(t, srv.URL)
	a.store = &failingStore{Provider: st, writeErr: errors.New("database is locked")}

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Error during batch insertion:")
}
