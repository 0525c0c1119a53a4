package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
	"github.com/examhub/exam-room-scheduler/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the catalog client.
type ClientConfig struct {
	// URL is the GraphQL endpoint.
	URL string

	// Token is sent as a bearer token when set.
	Token string

	// Timeout bounds one HTTP exchange.
	Timeout time.Duration

	// MaxAttempts bounds tries per query, first one included.
	MaxAttempts int

	// RetryDelay is the first backoff delay.
	RetryDelay time.Duration

	// HTTPClient overrides the default client.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(url string) ClientConfig {
	return ClientConfig{
		URL:         url,
		Timeout:     30 * time.Second,
		MaxAttempts: 3,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client fetches the four catalog collections. It keeps no state between
// calls.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
	mapper     *Mapper
	retry      retry.Policy
}

// NewClient creates a new catalog client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	c := &Client{
		config:     config,
		httpClient: httpClient,
		logger:     config.Logger,
		mapper:     NewMapper(),
	}
	c.retry = retry.CatalogPolicy(config.MaxAttempts, config.RetryDelay, func(attempt int, err error, delay time.Duration) {
		c.logger.Warn("catalog request failed, retrying",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
	})
	return c
}

// FetchRoster returns every person in the catalog.
func (c *Client) FetchRoster(ctx context.Context) ([]catalog.Person, error) {
	data, err := query[usersData](ctx, c, "FetchRoster", queryUsers)
	if err != nil {
		return nil, err
	}
	return c.mapper.People(data.GetAllUser), nil
}

// FetchSubjects returns every subject in the catalog.
func (c *Client) FetchSubjects(ctx context.Context) ([]catalog.Subject, error) {
	data, err := query[subjectsData](ctx, c, "FetchSubjects", querySubjects)
	if err != nil {
		return nil, err
	}
	return c.mapper.Subjects(data.GetAllSubject), nil
}

// FetchRooms returns every room in the catalog.
func (c *Client) FetchRooms(ctx context.Context) ([]catalog.Room, error) {
	data, err := query[roomsData](ctx, c, "FetchRooms", queryRooms)
	if err != nil {
		return nil, err
	}
	return c.mapper.Rooms(data.GetAllRoom), nil
}

// FetchEnrollments returns every enrollment, with null entries removed.
func (c *Client) FetchEnrollments(ctx context.Context) ([]catalog.Enrollment, error) {
	data, err := query[enrollmentsData](ctx, c, "FetchEnrollments", queryEnrollments)
	if err != nil {
		return nil, err
	}
	return c.mapper.Enrollments(data.GetAllEnrollment), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSPORT
// ══════════════════════════════════════════════════════════════════════════════

// statusError is a non-2xx answer.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("catalog returned status %d: %s", e.Status, e.Body)
}

func query[T any](ctx context.Context, c *Client, op, q string) (*T, error) {
	data, err := retry.DoValue(ctx, c.retry, func(ctx context.Context) (*T, error) {
		return doQuery[T](ctx, c, q)
	})
	if err != nil {
		c.logger.Error("catalog request failed", "op", op, "error", err)
		return nil, shared.WrapError("catalog-api", op, shared.ErrTransport, "remote catalog request failed", err)
	}
	return data, nil
}

func doQuery[T any](ctx context.Context, c *Client, q string) (*T, error) {
	body, err := json.Marshal(graphQLRequest{Query: q})
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTransient(err) {
			return nil, retry.Retryable(fmt.Errorf("http request: %w", err))
		}
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Retryable(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &statusError{Status: resp.StatusCode, Body: truncate(string(respBody), 256)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, retry.Retryable(serr)
		}
		return nil, serr
	}

	var envelope graphQLResponse[T]
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		errs := make([]error, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			errs = append(errs, e)
		}
		return nil, fmt.Errorf("graphql: %w", errors.Join(errs...))
	}
	if envelope.Data == nil {
		return nil, errors.New("graphql: response has no data")
	}
	return envelope.Data, nil
}

// isTransient reports network failures worth another attempt. Context
// cancellation is never retried.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
