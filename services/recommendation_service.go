package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"lovelush_server/models"
)

// RecommendationService fetches match candidates for a user from the
// external recommendation webhook. The webhook wraps its result in an
// {"output": [...]} envelope. No retries; a failed call surfaces to the
// caller and the client asks again.
type RecommendationService struct {
	WebhookURL string
	HTTPClient *http.Client
}

func NewRecommendationService(webhookURL string) *RecommendationService {
	return &RecommendationService{
		WebhookURL: webhookURL,
		HTTPClient: http.DefaultClient,
	}
}

// FetchCandidates asks the webhook for up to count match candidates for
// the given user.
func (rs *RecommendationService) FetchCandidates(ctx context.Context, userID int64, count int) ([]models.MatchCandidate, error) {
	endpoint, err := url.Parse(rs.WebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}
	query := endpoint.Query()
	query.Set("user_id", strconv.FormatInt(userID, 10))
	query.Set("num_of_matches", strconv.Itoa(count))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := rs.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Output []models.MatchCandidate `json:"output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode webhook response: %w", err)
	}
	return envelope.Output, nil
}
