package trello

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/interrupt-bot-go/internal/util"
	pkgerrors "github.com/kapu/interrupt-bot-go/pkg/errors"
)

const defaultBaseURL = "https://api.trello.com/1"

// ErrNotFound is returned when Trello reports 404 for a member, board, list
// or card lookup.
var ErrNotFound = errors.New("trello: not found")

// API is the Trello capability surface the bot consumes.
type API interface {
	FindMember(ctx context.Context, idOrUsername string) (*Member, error)
	MemberBoards(ctx context.Context, idOrUsername string) ([]Board, error)
	BoardLists(ctx context.Context, boardID string) ([]List, error)
	ListCards(ctx context.Context, listID string) ([]Card, error)
	FindCard(ctx context.Context, cardID string) (*Card, error)
}

type Client struct {
	baseURL    string
	key        string
	token      string
	httpClient *http.Client
	breaker    *util.CircuitBreaker
	logger     *zap.Logger
}

type ClientConfig struct {
	DeveloperPublicKey string
	MemberToken        string
	RequestTimeout     time.Duration
	BaseURL            string
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		key:     cfg.DeveloperPublicKey,
		token:   cfg.MemberToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: util.NewCircuitBreaker(5, 30*time.Second, logger),
		logger:  logger,
	}
}

func (c *Client) FindMember(ctx context.Context, idOrUsername string) (*Member, error) {
	var member Member
	params := url.Values{"fields": {"id,username,fullName"}}
	if err := c.doRequest(ctx, "/members/"+url.PathEscape(idOrUsername), params, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *Client) MemberBoards(ctx context.Context, idOrUsername string) ([]Board, error) {
	var boards []Board
	params := url.Values{"fields": {"id,name"}}
	if err := c.doRequest(ctx, "/members/"+url.PathEscape(idOrUsername)+"/boards", params, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

func (c *Client) BoardLists(ctx context.Context, boardID string) ([]List, error) {
	var lists []List
	params := url.Values{"fields": {"id,name,idBoard"}}
	if err := c.doRequest(ctx, "/boards/"+url.PathEscape(boardID)+"/lists", params, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (c *Client) ListCards(ctx context.Context, listID string) ([]Card, error) {
	var cards []Card
	params := url.Values{"fields": {"id,name,idList,idMembers"}}
	if err := c.doRequest(ctx, "/lists/"+url.PathEscape(listID)+"/cards", params, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *Client) FindCard(ctx context.Context, cardID string) (*Card, error) {
	var card Card
	params := url.Values{"fields": {"id,name,idList,idMembers"}}
	if err := c.doRequest(ctx, "/cards/"+url.PathEscape(cardID), params, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) doRequest(ctx context.Context, path string, params url.Values, dest any) error {
	if !c.breaker.CanExecute() {
		c.logger.Warn("Trello circuit breaker is open", zap.String("path", path))
		return pkgerrors.NewAPIError("Trello circuit breaker open", 503, map[string]any{
			"path": path,
		})
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.key)
	params.Set("token", c.token)

	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return pkgerrors.NewAPIError("failed to create request", 500, map[string]any{
			"path": path,
		}).WithCause(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		c.logger.Error("Trello request failed", zap.String("path", path), zap.Error(err))
		return pkgerrors.NewAPIError("Trello request failed", 500, map[string]any{
			"path": path,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.breaker.RecordSuccess()
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			c.breaker.RecordFailure()
		}
		bodyBytes, _ := io.ReadAll(resp.Body)
		return pkgerrors.NewAPIError(
			fmt.Sprintf("Trello API error: %s", resp.Status),
			resp.StatusCode,
			map[string]any{
				"path": path,
				"body": string(bodyBytes),
			},
		)
	}

	c.breaker.RecordSuccess()

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return pkgerrors.NewAPIError("failed to decode response", 500, map[string]any{
				"path": path,
			}).WithCause(err)
		}
	}

	return nil
}
