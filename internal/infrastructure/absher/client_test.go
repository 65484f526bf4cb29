package absher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/facility-dashboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokens struct{ token string }

func (s *stubTokens) Token(ctx context.Context) (string, error) { return s.token, nil }

func testClient(baseURL string) *Client {
	return &Client{
		tokens:          &stubTokens{token: "test-token"},
		baseURL:         baseURL,
		subscriptionKey: "sub-key",
		httpClient:      &http.Client{Timeout: searchTimeout},
		now:             time.Now,
	}
}

func searchServer(t *testing.T, got *searchRequest, respond http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "sub-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		respond(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchInsuranceByPlate(t *testing.T) {
	var got searchRequest
	srv := searchServer(t, &got, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{List: []insuranceItem{{
			InsuranceCompanyName: "Tawuniya",
			MainPolicyNumber:     "POL-123",
			PolicyEndDate:        "2026-09-01",
			PolicyStatus:         "Active",
		}}})
	})

	c := testClient(srv.URL)
	info, err := c.FetchInsurance(context.Background(), "أ ب ج 1234", "")
	require.NoError(t, err)

	assert.Equal(t, searchByPlate, got.SearchType)
	require.NotNil(t, got.Plate)
	assert.Equal(t, "أ", got.Plate.Text1)
	assert.Equal(t, "1234", got.Plate.Number)

	require.NotNil(t, info.Company)
	assert.Equal(t, "Tawuniya", *info.Company)
	require.NotNil(t, info.PolicyNumber)
	assert.Equal(t, "POL-123", *info.PolicyNumber)
	require.NotNil(t, info.ExpiryDate)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), info.ExpiryDate.UTC())
	require.NotNil(t, info.Status)
	assert.Equal(t, "Active", *info.Status)
}

func TestFetchInsuranceBySequenceNumber(t *testing.T) {
	var got searchRequest
	srv := searchServer(t, &got, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{List: nil})
	})

	c := testClient(srv.URL)
	_, err := c.FetchInsurance(context.Background(), "ignored plate", "123456789")
	require.NoError(t, err)

	assert.Equal(t, searchBySequence, got.SearchType)
	assert.Equal(t, "123456789", got.SequenceNumber)
	assert.Nil(t, got.Plate)
}

func TestFetchInsuranceNoMatch(t *testing.T) {
	srv := searchServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{List: []insuranceItem{}})
	})

	c := testClient(srv.URL)
	info, err := c.FetchInsurance(context.Background(), "أ ب ج 1234", "")
	require.NoError(t, err)

	assert.Nil(t, info.Company)
	assert.Nil(t, info.PolicyNumber)
	assert.Nil(t, info.ExpiryDate)
	assert.Nil(t, info.Status)
	assert.Equal(t, "أ ب ج 1234", info.PlateNumber)
	assert.False(t, info.LastSyncDate.IsZero())
}

func TestFetchInsuranceUpstreamError(t *testing.T) {
	srv := searchServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	})

	c := testClient(srv.URL)
	_, err := c.FetchInsurance(context.Background(), "أ ب ج 1234", "")

	var apiErr *domain.ExternalAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Contains(t, apiErr.Body, "upstream unavailable")
}

func TestFetchInsuranceMalformedBody(t *testing.T) {
	srv := searchServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	c := testClient(srv.URL)
	_, err := c.FetchInsurance(context.Background(), "أ ب ج 1234", "")

	var apiErr *domain.ExternalAPIError
	require.ErrorAs(t, err, &apiErr)
}

func TestFetchInsuranceInvalidPlateSkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(srv.Close)

	c := testClient(srv.URL)
	_, err := c.FetchInsurance(context.Background(), "أ م ح", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, called)
}

func TestParsePlate(t *testing.T) {
	tests := []struct {
		name       string
		plate      string
		wantNumber string
		wantTexts  [3]string
		wantErr    bool
	}{
		{"number last", "أ ب ج 1234", "1234", [3]string{"أ", "ب", "ج"}, false},
		{"number first", "1234 أ ب ج", "1234", [3]string{"أ", "ب", "ج"}, false},
		{"latin letters", "A B C 9876", "9876", [3]string{"A", "B", "C"}, false},
		{"three tokens", "أ ب ج", "", [3]string{}, true},
		{"five tokens", "أ ب ج د 1234", "", [3]string{}, true},
		{"no numeric segment", "أ ب ج د", "", [3]string{}, true},
		{"empty", "", "", [3]string{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := parsePlate(tc.plate)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantNumber, p.Number)
			assert.Equal(t, tc.wantTexts[0], p.Text1)
			assert.Equal(t, tc.wantTexts[1], p.Text2)
			assert.Equal(t, tc.wantTexts[2], p.Text3)
		})
	}
}

func TestParseDateLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want *time.Time
	}{
		{"2026-09-01", datePtr(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))},
		{"2026-09-01T12:30:00", datePtr(time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC))},
		{"01/09/2026", datePtr(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))},
		{"2026/09/01", datePtr(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))},
		{"not a date", nil},
		{"", nil},
	}

	for _, tc := range tests {
		got := parseDate(tc.in)
		if tc.want == nil {
			assert.Nil(t, got, tc.in)
			continue
		}
		require.NotNil(t, got, tc.in)
		assert.True(t, got.Equal(*tc.want), tc.in)
	}
}

func datePtr(t time.Time) *time.Time { return &t }
