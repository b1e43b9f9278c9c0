// Package mediawiki is a thin client for the subset of the MediaWiki
// action API the documentation flows need: bot login, CSRF tokens, and
// wikitext page reads and writes. Conflict arbitration stays on the wiki
// side; this client only reports its answers.
package mediawiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

var (
	// ErrPageNotFound is returned when the wiki reports a missing title.
	ErrPageNotFound = errors.New("mediawiki: page not found")

	// ErrPageExists is returned by CreatePage when the title already exists.
	ErrPageExists = errors.New("mediawiki: page already exists")

	// ErrInvalidToken is returned when the CSRF token fails validation.
	ErrInvalidToken = errors.New("mediawiki: invalid API token")
)

// Client talks to one MediaWiki API endpoint as one bot account. The
// session cookie jar and the rate limiter are shared across calls, so a
// single Client serializes naturally with the one-writer window the page
// edit flows assume.
type Client struct {
	endpoint    string
	botName     string
	botPassword string
	http        *http.Client
	limiter     *rate.Limiter
}

// NewClient creates a client for the given API endpoint. rps throttles
// outbound API calls; retries of transient transport failures are handled
// here too, so callers never retry.
func NewClient(endpoint, botName, botPassword string, rps float64) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.HTTPClient.Jar = jar

	if rps <= 0 {
		rps = 2
	}
	return &Client{
		endpoint:    endpoint,
		botName:     botName,
		botPassword: botPassword,
		http:        rc.StandardClient(),
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// apiError is the MediaWiki error envelope.
type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	return c.call(ctx, http.MethodGet, params, nil, out)
}

func (c *Client) post(ctx context.Context, params url.Values, form url.Values, out any) error {
	return c.call(ctx, http.MethodPost, params, form, out)
}

func (c *Client) call(ctx context.Context, method string, params url.Values, form url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	params.Set("format", "json")
	reqURL := c.endpoint + "?" + params.Encode()

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling wiki API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wiki API: HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding wiki response: %w", err)
	}
	return nil
}

// Login performs the two-step bot login handshake and stores the session
// in the client's cookie jar.
func (c *Client) Login(ctx context.Context) error {
	var tokenResp struct {
		Query struct {
			Tokens struct {
				LoginToken string `json:"logintoken"`
			} `json:"tokens"`
		} `json:"query"`
	}
	params := url.Values{"action": {"query"}, "meta": {"tokens"}, "type": {"login"}}
	if err := c.get(ctx, params, &tokenResp); err != nil {
		return fmt.Errorf("fetching login token: %w", err)
	}

	var loginResp struct {
		Login struct {
			Result string `json:"result"`
			Reason string `json:"reason"`
		} `json:"login"`
	}
	params = url.Values{"action": {"login"}, "lgname": {c.botName}}
	form := url.Values{
		"lgpassword": {c.botPassword},
		"lgtoken":    {tokenResp.Query.Tokens.LoginToken},
	}
	if err := c.post(ctx, params, form, &loginResp); err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	if loginResp.Login.Result != "Success" {
		return fmt.Errorf("login rejected: %s %s", loginResp.Login.Result, loginResp.Login.Reason)
	}
	return nil
}

// CSRFToken fetches an edit token for the active session.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	var resp struct {
		Query struct {
			Tokens struct {
				CSRFToken string `json:"csrftoken"`
			} `json:"tokens"`
		} `json:"query"`
	}
	params := url.Values{"action": {"query"}, "meta": {"tokens"}}
	if err := c.get(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("fetching csrf token: %w", err)
	}
	return resp.Query.Tokens.CSRFToken, nil
}

// CheckToken validates a CSRF token against the wiki.
func (c *Client) CheckToken(ctx context.Context, token string) error {
	var resp struct {
		CheckToken struct {
			Result string `json:"result"`
		} `json:"checktoken"`
	}
	params := url.Values{"action": {"checktoken"}, "type": {"csrf"}}
	form := url.Values{"token": {token}}
	if err := c.post(ctx, params, form, &resp); err != nil {
		return fmt.Errorf("checking token: %w", err)
	}
	if resp.CheckToken.Result == "invalid" {
		return ErrInvalidToken
	}
	return nil
}

// PageText returns the current wikitext of a page.
func (c *Client) PageText(ctx context.Context, title string) (string, error) {
	var resp struct {
		Error *apiError `json:"error"`
		Parse struct {
			Wikitext struct {
				Text string `json:"*"`
			} `json:"wikitext"`
		} `json:"parse"`
	}
	params := url.Values{"action": {"parse"}, "page": {title}, "prop": {"wikitext"}}
	if err := c.get(ctx, params, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		if resp.Error.Code == "missingtitle" {
			return "", fmt.Errorf("%w: %q", ErrPageNotFound, title)
		}
		return "", fmt.Errorf("wiki API: %s: %s", resp.Error.Code, resp.Error.Info)
	}
	return resp.Parse.Wikitext.Text, nil
}

// PageExists reports whether the titled page exists.
func (c *Client) PageExists(ctx context.Context, title string) (bool, error) {
	_, err := c.PageText(ctx, title)
	if errors.Is(err, ErrPageNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreatePage creates a new page and fails if the title already exists.
func (c *Client) CreatePage(ctx context.Context, title, text string) error {
	return c.edit(ctx, title, text, "createonly")
}

// EditPage replaces the text of an existing page and fails on a missing
// title.
func (c *Client) EditPage(ctx context.Context, title, text string) error {
	return c.edit(ctx, title, text, "nocreate")
}

func (c *Client) edit(ctx context.Context, title, text, mode string) error {
	token, err := c.CSRFToken(ctx)
	if err != nil {
		return err
	}

	var resp struct {
		Error *apiError `json:"error"`
		Edit  struct {
			Result string `json:"result"`
		} `json:"edit"`
	}
	params := url.Values{
		"action":       {"edit"},
		"title":        {title},
		mode:           {"true"},
		"contentmodel": {"wikitext"},
		"bot":          {"true"},
	}
	form := url.Values{"token": {token}, "text": {text}}
	if err := c.post(ctx, params, form, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		switch resp.Error.Code {
		case "articleexists":
			return fmt.Errorf("%w: %q", ErrPageExists, title)
		case "missingtitle":
			return fmt.Errorf("%w: %q", ErrPageNotFound, title)
		case "badtoken":
			return ErrInvalidToken
		default:
			return fmt.Errorf("wiki API: %s: %s", resp.Error.Code, resp.Error.Info)
		}
	}
	if resp.Edit.Result != "Success" {
		return fmt.Errorf("edit of %q rejected: %s", title, resp.Edit.Result)
	}
	return nil
}
