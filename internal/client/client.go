package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"storybank/internal/models"
	"storybank/internal/providers"
	"storybank/internal/structures"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	json "github.com/goccy/go-json"
)

const maxErrorBody = 64 << 10

type BackendInterface interface {
	FetchChannelVideos(ctx context.Context, channelID string, maxResults int, order string) (*ChannelVideos, error)
	ProcessTranscript(ctx context.Context, videoURL, category string, autoCategorize bool) (*TranscriptResult, error)
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, name string) (*Category, error)
	GenerateStory(ctx context.Context, req StoryRequest) (*GeneratedStory, error)
	FinalizeStory(ctx context.Context, storyID string, req FinalizeRequest) (*Story, error)
}

// Client talks to the transcript and story backend. Transport failures and 5xx answers
// are retried with exponential backoff, anything else is returned on the first attempt.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	maxRetries    int
	retryInterval time.Duration
	logger        providers.Logger
	metrics       providers.MetricsProviderInterface
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryInterval sets the first backoff delay.
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) { c.retryInterval = d }
}

func NewClient(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(conf.Backend.BaseURL, "/"),
		httpClient:    &http.Client{Timeout: conf.Backend.Timeout},
		maxRetries:    conf.Backend.MaxRetries,
		retryInterval: 500 * time.Millisecond,
		logger:        logger,
		metrics:       metrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FetchChannelVideos(ctx context.Context, channelID string, maxResults int, order string) (*ChannelVideos, error) {
	if order == "" {
		order = "date"
	}
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(maxResults))
	q.Set("order", order)

	var out ChannelVideos
	path := "/youtube/channel/" + url.PathEscape(channelID) + "/videos?" + q.Encode()
	if err := c.do(ctx, "fetch_channel_videos", http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ProcessTranscript(ctx context.Context, videoURL, category string, autoCategorize bool) (*TranscriptResult, error) {
	form := url.Values{}
	form.Set("url", videoURL)
	form.Set("auto_categorize", strconv.FormatBool(autoCategorize))
	if category != "" {
		form.Set("category", category)
	}

	var out TranscriptResult
	err := c.do(ctx, "process_transcript", http.MethodPost, "/transcripts/process",
		"application/x-www-form-urlencoded", []byte(form.Encode()), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, "list_categories", http.MethodGet, "/categories/", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, name string) (*Category, error) {
	body, err := json.Marshal(Category{Name: name})
	if err != nil {
		return nil, err
	}
	var out Category
	if err := c.do(ctx, "create_category", http.MethodPost, "/categories/", "application/json", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GenerateStory(ctx context.Context, req StoryRequest) (*GeneratedStory, error) {
	var (
		path    string
		payload any
	)
	switch req.Source {
	case models.StoryFromCategories:
		path = "/generate/story"
		payload = categoryWeightsBody{
			CategoryWeights:     req.CategoryWeights,
			VariationsCount:     req.VariationsCount,
			Style:               req.Style,
			MaterialPerCategory: req.MaterialPerCategory,
			Length:              req.Length,
		}
	case models.StoryFromTranscripts:
		path = "/generate/story-from-transcripts"
		payload = transcriptsBody{
			TranscriptIDs:   req.TranscriptIDs,
			VariationsCount: req.VariationsCount,
			Style:           req.Style,
			Length:          req.Length,
		}
	case models.StoryFromSynopsis:
		path = "/generate/story-from-synopsis"
		payload = synopsisBody{
			Story:           req.Synopsis,
			VariationsCount: req.VariationsCount,
			Style:           req.Style,
			Length:          req.Length,
		}
	default:
		return nil, fmt.Errorf("unknown story source %q", req.Source)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out GeneratedStory
	if err := c.do(ctx, "generate_story", http.MethodPost, path, "application/json", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FinalizeStory(ctx context.Context, storyID string, req FinalizeRequest) (*Story, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var out Story
	path := "/stories/" + url.PathEscape(storyID) + "/finalize"
	if err := c.do(ctx, "finalize_story", http.MethodPost, path, "application/json", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op, method, path, contentType string, body []byte, out any) error {
	start := time.Now()
	defer func() {
		c.metrics.ObserveBackendDuration(op, time.Since(start))
	}()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval

	tries := c.maxRetries + 1
	if tries < 1 {
		tries = 1
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.attempt(ctx, method, path, contentType, body, out)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(tries)),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warnf(providers.TypeSync, "%s failed, retrying in %s: %s", op, next, err)
		}),
	)
	if err != nil {
		c.logger.Errorf(providers.TypeSync, "%s %s: %s", method, path, err)
	}
	return err
}

func (c *Client) attempt(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		if resp.StatusCode >= 500 {
			return apiErr
		}
		return backoff.Permanent(apiErr)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("decoding response: %w", err))
	}
	return nil
}
