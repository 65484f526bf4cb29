package absher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/facility-dashboard-api/internal/config"
	"github.com/facility-dashboard-api/internal/domain"
)

const searchTimeout = 10 * time.Second

// Search types defined by the external API.
const (
	searchByPlate    = 0
	searchBySequence = 1
)

type tokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Client queries per-vehicle insurance data from the external API. It carries
// no retry policy of its own: a failed lookup surfaces immediately and the
// sync orchestrator decides whether to skip or report it.
type Client struct {
	tokens          tokenProvider
	baseURL         string
	subscriptionKey string
	httpClient      *http.Client
	now             func() time.Time
}

func NewClient(cfg *config.Config, tokens *TokenSource) *Client {
	return &Client{
		tokens:          tokens,
		baseURL:         cfg.AbsherBaseURL,
		subscriptionKey: cfg.AbsherSubscriptionKey,
		httpClient:      &http.Client{Timeout: searchTimeout},
		now:             time.Now,
	}
}

type platePayload struct {
	Text1  string `json:"text1"`
	Text2  string `json:"text2"`
	Text3  string `json:"text3"`
	Number string `json:"number"`
	Type   int    `json:"type"`
}

type searchRequest struct {
	SearchType     int           `json:"searchType"`
	Plate          *platePayload `json:"plate,omitempty"`
	SequenceNumber string        `json:"sequenceNumber,omitempty"`
}

type insuranceItem struct {
	InsuranceCompanyName string `json:"insuranceCompanyName"`
	MainPolicyNumber     string `json:"mainPolicyNumber"`
	PolicyEndDate        string `json:"policyEndDate"`
	PolicyStatus         string `json:"policyStatus"`
}

type searchResponse struct {
	List []insuranceItem `json:"list"`
}

// FetchInsurance looks up insurance data for one vehicle. When
// sequenceNumber is non-empty the lookup uses it directly; otherwise the
// free-text plate number is decomposed into the structured plate payload.
func (c *Client) FetchInsurance(ctx context.Context, plateNumber, sequenceNumber string) (*domain.InsuranceInfo, error) {
	search := searchRequest{}
	if sequenceNumber != "" {
		search.SearchType = searchBySequence
		search.SequenceNumber = sequenceNumber
	} else {
		plate, err := parsePlate(plateNumber)
		if err != nil {
			return nil, err
		}
		search.SearchType = searchByPlate
		search.Plate = plate
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(search)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if c.subscriptionKey != "" {
		req.Header.Set("Ocp-Apim-Subscription-Key", c.subscriptionKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("insurance lookup: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.ExternalAPIError{Status: resp.StatusCode, Body: string(body)}
	}
	if len(body) == 0 {
		return nil, &domain.ExternalAPIError{Status: resp.StatusCode, Body: "empty response body"}
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, &domain.ExternalAPIError{Status: resp.StatusCode, Body: "malformed response body"}
	}

	info := &domain.InsuranceInfo{
		PlateNumber:  plateNumber,
		LastSyncDate: c.now().UTC(),
		DataSource:   "external",
	}
	// An empty list is a clean "no match": every derived field stays nil.
	if len(sr.List) > 0 {
		first := sr.List[0]
		info.Company = nonEmpty(first.InsuranceCompanyName)
		info.PolicyNumber = nonEmpty(first.MainPolicyNumber)
		info.Status = nonEmpty(first.PolicyStatus)
		info.ExpiryDate = parseDate(first.PolicyEndDate)
	}
	return info, nil
}

// parsePlate decomposes a free-text plate number into the structured payload
// the external API expects: exactly 4 whitespace-separated tokens, three
// letter segments and one numeric segment. The numeric segment may lead or
// trail depending on how the plate was entered.
func parsePlate(plateNumber string) (*platePayload, error) {
	tokens := strings.Fields(plateNumber)
	if len(tokens) != 4 {
		return nil, fmt.Errorf("plate number %q must have 3 letter segments and a number: %w", plateNumber, domain.ErrValidation)
	}
	p := &platePayload{Type: 1}
	if isDigits(tokens[0]) {
		p.Number = tokens[0]
		p.Text1, p.Text2, p.Text3 = tokens[1], tokens[2], tokens[3]
	} else {
		p.Text1, p.Text2, p.Text3 = tokens[0], tokens[1], tokens[2]
		p.Number = tokens[3]
	}
	if !isDigits(p.Number) {
		return nil, fmt.Errorf("plate number %q has no numeric segment: %w", plateNumber, domain.ErrValidation)
	}
	return p, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// parseDate accepts the date layouts the external API has been seen to use.
// Anything unparseable yields nil, never an error.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
		"02/01/2006",
		"2006/01/02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
