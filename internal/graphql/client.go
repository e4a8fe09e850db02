package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// envelopePrefix is the tag the API prepends to rejection messages. It is
// transport noise and gets stripped before anything reaches a user.
const envelopePrefix = "GraphQL error: "

// Client posts GraphQL operations to a single HTTPS endpoint. Authentication
// is per request: callers pass the bearer token of the active session.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for the given endpoint. The timeout bounds the
// whole request; there is no retry.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// RemoteError is a rejection produced by the API itself, as opposed to a
// transport failure. Its message is already clean for display.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// Do executes one operation and decodes the data payload into out. A response
// carrying GraphQL errors becomes a *RemoteError built from the first message.
func (c *Client) Do(ctx context.Context, token, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql endpoint returned %s", resp.Status)
	}

	var envelope response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}

	if len(envelope.Errors) > 0 {
		return &RemoteError{Message: CleanMessage(envelope.Errors[0].Message)}
	}

	if out == nil {
		return nil
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("empty response from graphql endpoint")
	}
	return json.Unmarshal(envelope.Data, out)
}

// CleanMessage strips the error-envelope tag from a rejection message, leaving
// the human-readable part. Messages without the tag pass through unchanged.
func CleanMessage(msg string) string {
	return strings.TrimPrefix(msg, envelopePrefix)
}
