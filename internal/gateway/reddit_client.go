package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/camsettings-bot/internal/config"
	"github.com/camsettings-bot/internal/logging"
	"github.com/camsettings-bot/internal/types"
)

const (
	defaultAuthBaseURL = "https://www.reddit.com"
	defaultAPIBaseURL  = "https://oauth.reddit.com"

	// tokenExpirySlack renews the token slightly before the server-side
	// expiry so an in-flight request never carries a stale one.
	tokenExpirySlack = 30 * time.Second
)

// RedditClient is a messaging gateway backed by the reddit API in script-app
// mode (OAuth2 password grant). Outbound calls share one rate limiter.
type RedditClient struct {
	cfg        *config.RedditConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logging.Logger

	authBaseURL string
	apiBaseURL  string

	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewRedditClient creates a gateway client from the reddit configuration.
func NewRedditClient(cfg *config.RedditConfig, logger *logging.Logger) *RedditClient {
	return &RedditClient{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:      logger,
		authBaseURL: defaultAuthBaseURL,
		apiBaseURL:  defaultAPIBaseURL,
	}
}

// SubredditComments lists the newest comments of the configured subreddit.
func (c *RedditClient) SubredditComments(ctx context.Context, limit int) ([]Item, error) {
	endpoint := fmt.Sprintf("/r/%s/comments?limit=%d", c.cfg.Subreddit, limit)

	var listing listingResponse
	if err := c.doAPI(ctx, http.MethodGet, endpoint, nil, &listing); err != nil {
		return nil, fmt.Errorf("failed to list subreddit comments: %w", err)
	}

	return listing.items(types.ChannelComment), nil
}

// UnreadMessages lists unread inbox items. Comment replies arriving in the
// inbox keep the comment channel, so they can never trigger a settings
// update.
func (c *RedditClient) UnreadMessages(ctx context.Context) ([]Item, error) {
	var listing listingResponse
	if err := c.doAPI(ctx, http.MethodGet, "/message/unread?limit=100", nil, &listing); err != nil {
		return nil, fmt.Errorf("failed to list unread messages: %w", err)
	}

	return listing.items(types.ChannelMessage), nil
}

// Reply posts a reply under the given comment or message fullname.
func (c *RedditClient) Reply(ctx context.Context, parentFullname, text string) error {
	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("thing_id", parentFullname)
	form.Set("text", text)

	if err := c.doAPI(ctx, http.MethodPost, "/api/comment", form, nil); err != nil {
		return fmt.Errorf("failed to post reply to %s: %w", parentFullname, err)
	}

	c.logger.WithField("parent", parentFullname).Debug("Posted reply")
	return nil
}

// MarkRead confirms inbox items in one call.
func (c *RedditClient) MarkRead(ctx context.Context, fullnames []string) error {
	if len(fullnames) == 0 {
		return nil
	}

	form := url.Values{}
	form.Set("id", strings.Join(fullnames, ","))

	if err := c.doAPI(ctx, http.MethodPost, "/api/read_message", form, nil); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

// doAPI performs one authenticated API call, refreshing the token when
// needed and decoding the JSON response into out (if non-nil).
func (c *RedditClient) doAPI(ctx context.Context, method, endpoint string, form url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBaseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Token was revoked server-side; drop it so the next call
		// re-authenticates.
		c.tokenMu.Lock()
		c.accessToken = ""
		c.tokenMu.Unlock()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// token returns a valid access token, requesting a new one through the
// password grant when the cached one is missing or near expiry.
func (c *RedditClient) token(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenExpirySlack)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.cfg.Username)
	form.Set("password", c.cfg.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authBaseURL+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from token endpoint", resp.StatusCode)
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access token")
	}

	c.accessToken = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	c.logger.Debug("Refreshed gateway access token")

	return c.accessToken, nil
}

// listingResponse is the reddit listing envelope shared by the comments and
// inbox endpoints.
type listingResponse struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				Name       string  `json:"name"`
				Author     string  `json:"author"`
				Body       string  `json:"body"`
				WasComment bool    `json:"was_comment"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// items flattens the listing into gateway items. defaultChannel applies to
// real private messages; inbox entries that are comment replies keep the
// comment channel.
func (l *listingResponse) items(defaultChannel types.Channel) []Item {
	out := make([]Item, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		channel := defaultChannel
		if child.Kind == "t1" || child.Data.WasComment {
			channel = types.ChannelComment
		}
		out = append(out, Item{
			Fullname: child.Data.Name,
			Channel:  channel,
			Author:   child.Data.Author,
			Body:     child.Data.Body,
			Created:  int64(child.Data.CreatedUTC),
		})
	}
	return out
}
