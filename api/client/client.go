// Package client is an HTTP client for the tally node API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/vocdoni/vocdoni-tally/api"
	"github.com/vocdoni/vocdoni-tally/log"
)

const (
	HTTPGET  = http.MethodGet
	HTTPPOST = http.MethodPost

	// DefaultRetries is the number of attempts made when the connection fails.
	DefaultRetries = 3
	// DefaultTimeout is the timeout of a single request.
	DefaultTimeout = 10 * time.Second

	retryDelay  = 500 * time.Millisecond
	maxLogBytes = 512
)

// Error is a non 200 response of the API.
type Error struct {
	Status  int
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("API error: %d (%s)", e.Status, e.Message)
	}
	return fmt.Sprintf("API error: %d (%d: %s)", e.Status, e.Code, e.Message)
}

// HTTPclient is the tally node API HTTP client.
type HTTPclient struct {
	c       *http.Client
	host    *url.URL
	retries int
}

// New returns a client for the API served at host. It fails if the host does
// not answer the ping endpoint.
func New(host string) (*HTTPclient, error) {
	hostURL, err := url.Parse(host)
	if err != nil {
		return nil, err
	}
	c := &HTTPclient{
		c: &http.Client{
			Transport: &http.Transport{IdleConnTimeout: DefaultTimeout},
			Timeout:   DefaultTimeout,
		},
		host:    hostURL,
		retries: DefaultRetries,
	}
	log.Debugw("http client created", "host", hostURL.String())
	if err := c.Ping(); err != nil {
		return nil, err
	}
	return c, nil
}

// Ping checks the API is up.
func (c *HTTPclient) Ping() error {
	data, status, err := c.Request(HTTPGET, nil, nil, api.PingEndpoint)
	if err != nil {
		return err
	}
	return DecodeResponse(data, status, nil)
}

// SetRetries configures the number of attempts of each request.
func (c *HTTPclient) SetRetries(n int) {
	c.retries = n
}

// SetTimeout configures the timeout of each request.
func (c *HTTPclient) SetTimeout(d time.Duration) {
	c.c.Timeout = d
	if tr, ok := c.c.Transport.(*http.Transport); ok {
		tr.ResponseHeaderTimeout = d
	}
}

// Request sends a request to the endpoint built by joining urlPath to the
// host. A non nil jsonBody is sent JSON encoded. params holds query
// parameters as key, value pairs; an unpaired trailing key is ignored. It
// returns the raw response body and the status code.
func (c *HTTPclient) Request(method string, jsonBody any, params []string, urlPath ...string) ([]byte, int, error) {
	var body []byte
	if jsonBody != nil {
		var err error
		if body, err = json.Marshal(jsonBody); err != nil {
			return nil, 0, fmt.Errorf("failed to marshal JSON: %w", err)
		}
	}

	u := *c.host
	u.Path = path.Join(u.Path, path.Join(urlPath...))
	if len(params) > 1 {
		values := url.Values{}
		for i := 0; i+1 < len(params); i += 2 {
			values.Set(params[i], params[i+1])
		}
		u.RawQuery = values.Encode()
	}

	logBody := body
	if len(logBody) > maxLogBytes {
		logBody = logBody[:maxLogBytes]
	}
	log.Debugw("http client request", "type", method, "url", u.String(), "body", string(logBody))

	var (
		resp   *http.Response
		reqErr error
	)
	for i := 1; i <= c.retries; i++ {
		req, err := http.NewRequest(method, u.String(), bytes.NewReader(body))
		if err != nil {
			return nil, 0, fmt.Errorf("failed to create request: %w", err)
		}
		if jsonBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		if resp, reqErr = c.c.Do(req); reqErr == nil {
			break
		}
		log.Warnw("http request failed", "error", reqErr.Error(), "attempt", i, "retries", c.retries)
		time.Sleep(retryDelay)
	}
	if reqErr != nil || resp == nil {
		return nil, 0, fmt.Errorf("http request ultimately failed after retries: %w", reqErr)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, resp.StatusCode, nil
}

// DecodeResponse decodes a JSON response body into out. A non 200 status is
// returned as an *Error carrying the API error code when the body has one.
func DecodeResponse(data []byte, status int, out any) error {
	if status != http.StatusOK {
		apiErr := &Error{Status: status, Message: string(bytes.TrimSpace(data))}
		body := struct {
			Err  string `json:"error"`
			Code int    `json:"code"`
		}{}
		if err := json.Unmarshal(data, &body); err == nil && body.Err != "" {
			apiErr.Code, apiErr.Message = body.Code, body.Err
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
