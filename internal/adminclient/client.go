// Package adminclient talks to the back-office admin API. Every response is
// decoded into typed records and checked before it reaches a caller; a
// malformed payload is reported as a *DecodeError rather than filled with
// zero values.
package adminclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const DefaultBaseURL = "http://localhost:8080"

// ErrSignInRequired is returned for 401 and 403 responses, and for admin
// calls made without a token.
var ErrSignInRequired = errors.New("sign in required")

// APIError is a non-2xx response other than 401/403.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// DecodeError names the entity and field a response failed validation on.
type DecodeError struct {
	Entity string
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("decode %s.%s: %s", e.Entity, e.Field, e.Reason)
}

type Client struct {
	baseURL string
	token   string
	timeout time.Duration
}

func New(baseURL, token string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: baseURL, token: token, timeout: 15 * time.Second}
}

func (c *Client) BaseURL() string { return c.baseURL }

// WithToken returns a copy of the client authenticated with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

type request struct {
	method string
	path   string
	body   any
	// multipart upload: form field name and local file path
	fileField string
	filePath  string
	public    bool
}

func (c *Client) send(r request) ([]byte, error) {
	if !r.public && c.token == "" {
		return nil, ErrSignInRequired
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(r.method)
	req.SetRequestURI(c.baseURL + r.path)
	a.Timeout(c.timeout)
	if c.token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

	switch {
	case r.filePath != "":
		a.SendFile(r.filePath, r.fileField).MultipartForm(nil)
	case r.body != nil:
		a.JSON(r.body)
	}

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s %s: %w", r.method, r.path, errors.Join(errs...))
	}

	switch {
	case code == fiber.StatusUnauthorized || code == fiber.StatusForbidden:
		return nil, ErrSignInRequired
	case code < 200 || code > 299:
		return nil, &APIError{Status: code, Message: errorMessage(body)}
	}
	return body, nil
}

// errorMessage pulls the server's {"error": "..."} message, if any.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

// unmarshal parses body into wire and turns type mismatches into
// DecodeErrors for entity.
func unmarshal(entity string, body []byte, wire any) error {
	if err := json.Unmarshal(body, wire); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return &DecodeError{Entity: entity, Field: te.Field, Reason: "expected " + te.Type.String() + ", got " + te.Value}
		}
		return &DecodeError{Entity: entity, Reason: err.Error()}
	}
	return nil
}
