package googlefin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmisra/folio/internal/cache"
)

func statsPage(rows ...[2]string) string {
	var b []byte
	b = append(b, "<html><body><div>"...)
	for _, row := range rows {
		b = append(b, fmt.Sprintf(
			`<div class="gyFHrc"><div class="mfs7Fc">%s</div><div class="P6K39c">%s</div></div>`,
			row[0], row[1])...)
	}
	b = append(b, "</div></body></html>"...)
	return string(b)
}

func TestGetFundamentals_ExtractsMetrics(t *testing.T) {
	var capturedPath, capturedUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, statsPage(
			[2]string{"Market cap", "6.25T INR"},
			[2]string{"P/E ratio", "24.56"},
			[2]string{"Earnings per share", "₹61.25"},
		))
	}))
	defer srv.Close()

	client := NewClient(nil, WithBaseURL(srv.URL))
	fundamentals, err := client.GetFundamentals(context.Background(), "INFY", "NSE")
	require.NoError(t, err)

	assert.Equal(t, "/quote/INFY:NSE", capturedPath)
	assert.NotEmpty(t, capturedUA, "page requests should carry a User-Agent")
	assert.Equal(t, "INFY", fundamentals.Symbol)
	assert.Equal(t, "NSE", fundamentals.ExchangeTag)
	require.NotNil(t, fundamentals.PERatio)
	assert.Equal(t, 24.56, *fundamentals.PERatio)
	require.NotNil(t, fundamentals.LatestEarnings)
	assert.Equal(t, 61.25, *fundamentals.LatestEarnings)
}

func TestGetFundamentals_LabelMatchingIsCaseInsensitive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, statsPage(
			[2]string{"PE RATIO (TTM)", "18.40"},
			[2]string{"eps (ttm)", "12.10"},
		))
	}))
	defer srv.Close()

	client := NewClient(nil, WithBaseURL(srv.URL))
	fundamentals, err := client.GetFundamentals(context.Background(), "TCS", "NSE")
	require.NoError(t, err)

	require.NotNil(t, fundamentals.PERatio)
	assert.Equal(t, 18.40, *fundamentals.PERatio)
	require.NotNil(t, fundamentals.LatestEarnings)
	assert.Equal(t, 12.10, *fundamentals.LatestEarnings)
}

func TestGetFundamentals_FirstMatchWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, statsPage(
			[2]string{"P/E ratio", "24.56"},
			[2]string{"Forward P/E", "21.00"},
		))
	}))
	defer srv.Close()

	client := NewClient(nil, WithBaseURL(srv.URL))
	fundamentals, err := client.GetFundamentals(context.Background(), "INFY", "NSE")
	require.NoError(t, err)

	require.NotNil(t, fundamentals.PERatio)
	assert.Equal(t, 24.56, *fundamentals.PERatio)
}

func TestGetFundamentals_UnparseableValuesYieldNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, statsPage(
			[2]string{"P/E ratio", "—"},
			[2]string{"Earnings per share", "N/A"},
		))
	}))
	defer srv.Close()

	client := NewClient(nil, WithBaseURL(srv.URL))
	fundamentals, err := client.GetFundamentals(context.Background(), "INFY", "NSE")
	require.NoError(t, err, "dashes and N/A placeholders are not a failure")

	assert.Nil(t, fundamentals.PERatio)
	assert.Nil(t, fundamentals.LatestEarnings)
}

func TestGetFundamentals_MissingRowsSucceedAndCache(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		fmt.Fprint(w, statsPage([2]string{"Market cap", "6.25T INR"}))
	}))
	defer srv.Close()

	client := NewClient(cache.New(time.Minute, time.Minute), WithBaseURL(srv.URL))

	first, err := client.GetFundamentals(context.Background(), "INFY", "NSE")
	require.NoError(t, err)
	assert.Nil(t, first.PERatio)
	assert.Nil(t, first.LatestEarnings)

	// The all-nil outcome is still a successful extraction and occupies the
	// cache like any other result.
	_, err = client.GetFundamentals(context.Background(), "INFY", "NSE")
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
}

func TestGetFundamentals_Non2xxIsFailureAndNotCached(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, statsPage([2]string{"P/E ratio", "24.56"}))
	}))
	defer srv.Close()

	client := NewClient(cache.New(time.Minute, time.Minute), WithBaseURL(srv.URL))

	_, err := client.GetFundamentals(context.Background(), "INFY", "NSE")
	require.Error(t, err)

	var fe *FundamentalsError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "INFY", fe.Symbol)
	assert.Equal(t, "NSE", fe.ExchangeTag)

	fundamentals, err := client.GetFundamentals(context.Background(), "INFY", "NSE")
	require.NoError(t, err, "failure must not occupy the cache")
	require.NotNil(t, fundamentals.PERatio)
	assert.Equal(t, 24.56, *fundamentals.PERatio)
}

func TestGetFundamentals_CacheKeyIncludesExchangeTag(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		fmt.Fprint(w, statsPage([2]string{"P/E ratio", "24.56"}))
	}))
	defer srv.Close()

	client := NewClient(cache.New(time.Minute, time.Minute), WithBaseURL(srv.URL))

	_, err := client.GetFundamentals(context.Background(), "509220", "BOM")
	require.NoError(t, err)
	_, err = client.GetFundamentals(context.Background(), "509220", "NSE")
	require.NoError(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt64(&calls), "different exchange tags are distinct cache entries")
}
