package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// defaultBaseURL is the Scryfall API endpoint.
	defaultBaseURL = "https://api.scryfall.com"

	// defaultUserAgent identifies this tool to the API, as Scryfall's
	// terms request.
	defaultUserAgent = "gatherer-archive/1.0"

	// httpClientTimeout is the timeout for HTTP requests.
	httpClientTimeout = 30 * time.Second

	// maxCallsPerSecond stays below Scryfall's documented limit of about
	// 10 requests per second.
	maxCallsPerSecond = 9
)

// ErrNoImage is returned when a card exposes no usable image URL.
var ErrNoImage = errors.New("card has no image URL")

// ClientConfig holds configuration for Client.
type ClientConfig struct {
	Logger    *slog.Logger
	BaseURL   string
	UserAgent string
	// CallsPerSecond overrides the API rate limit. Zero keeps the
	// default, which is just below Scryfall's ceiling.
	CallsPerSecond float64
}

// Client is a rate-limited Scryfall API client. Every API call blocks on
// the limiter first, so a sequential caller never exceeds the rate limit.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	baseURL    string
	userAgent  string
}

// NewClient creates a Client from the given configuration.
func NewClient(config ClientConfig) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	callsPerSecond := config.CallsPerSecond
	if callsPerSecond <= 0 {
		callsPerSecond = maxCallsPerSecond
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{Timeout: httpClientTimeout},
		limiter:    rate.NewLimiter(rate.Limit(callsPerSecond), 1),
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
	}
}

// apiCard mirrors the fields of a Scryfall card object this tool consumes.
type apiCard struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	SetName         string            `json:"set_name"`
	Set             string            `json:"set"`
	Artist          string            `json:"artist"`
	ReleasedAt      string            `json:"released_at"`
	ManaCost        *string           `json:"mana_cost"`
	TypeLine        *string           `json:"type_line"`
	Rarity          *string           `json:"rarity"`
	CollectorNumber *string           `json:"collector_number"`
	CMC             *float64          `json:"cmc"`
	ImageURIs       map[string]string `json:"image_uris"`
	CardFaces       []apiCardFace     `json:"card_faces"`
}

// apiCardFace is one face of a multi-faced card.
type apiCardFace struct {
	ImageURIs map[string]string `json:"image_uris"`
}

// fetchCard retrieves the raw card object for a multiverse id.
func (c *Client) fetchCard(ctx context.Context, multiverseID int) (card *apiCard, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	url := fmt.Sprintf("%s/cards/multiverse/%d", c.baseURL, multiverseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("fetching card from Scryfall", "multiverseId", multiverseID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("scryfall API error: status=%d body=%s", resp.StatusCode, string(body))
	}

	card = &apiCard{}
	if err := json.NewDecoder(resp.Body).Decode(card); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return card, nil
}

// FetchMetadata retrieves the metadata record for a multiverse id. The set
// code is uppercased for display; optional fields stay nil when the API
// omits them.
func (c *Client) FetchMetadata(ctx context.Context, multiverseID int) (*CardMetadata, error) {
	card, err := c.fetchCard(ctx, multiverseID)
	if err != nil {
		return nil, err
	}

	return &CardMetadata{
		MultiverseID:    multiverseID,
		Name:            card.Name,
		SetName:         card.SetName,
		SetCode:         strings.ToUpper(card.Set),
		Artist:          card.Artist,
		ReleasedAt:      card.ReleasedAt,
		ScryfallID:      card.ID,
		ManaCost:        card.ManaCost,
		TypeLine:        card.TypeLine,
		Rarity:          card.Rarity,
		CollectorNumber: card.CollectorNumber,
		CMC:             card.CMC,
		ImageURIs:       card.ImageURIs,
	}, nil
}

// FetchImageURL retrieves the preferred image URL for a multiverse id: the
// png rendition over large, and for multi-faced cards the front face's
// images when the card itself has none.
func (c *Client) FetchImageURL(ctx context.Context, multiverseID int) (string, error) {
	card, err := c.fetchCard(ctx, multiverseID)
	if err != nil {
		return "", err
	}

	if url := preferredImageURL(card.ImageURIs); url != "" {
		return url, nil
	}
	if len(card.CardFaces) > 0 {
		if url := preferredImageURL(card.CardFaces[0].ImageURIs); url != "" {
			return url, nil
		}
	}

	return "", fmt.Errorf("%w: multiverse id %d", ErrNoImage, multiverseID)
}

// preferredImageURL picks png over large from an image_uris map.
func preferredImageURL(uris map[string]string) string {
	if url, ok := uris["png"]; ok {
		return url
	}
	if url, ok := uris["large"]; ok {
		return url
	}
	return ""
}

// DownloadImage fetches raw image bytes. Image URLs point at Scryfall's
// CDN rather than the API, so downloads bypass the API limiter.
func (c *Client) DownloadImage(ctx context.Context, url string) (data []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download error: status=%d url=%s", resp.StatusCode, url)
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}

	return data, nil
}
