package smartthings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smart-lights/internal/application"
	"smart-lights/internal/domain"
)

const DefaultBaseURL = "https://api.smartthings.com/v1"

// ErrStatus is returned when the API answers with a non-2xx status.
var ErrStatus = errors.New("smartthings: unexpected status")

// Client talks to the SmartThings device commands API. Each dispatch opens
// its own Session so connections do not outlive it.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
}

func NewClient(token string) *Client {
	return NewClientWithURL(token, DefaultBaseURL)
}

func NewClientWithURL(token, baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		timeout: 15 * time.Second,
	}
}

func (c *Client) Open() application.DeviceSession {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Session{
		client:    c,
		transport: transport,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   c.timeout,
		},
	}
}

type Session struct {
	client     *Client
	transport  *http.Transport
	httpClient *http.Client
}

type commandsRequest struct {
	Commands []domain.DeviceCommand `json:"commands"`
}

// SendCommands posts the commands to one device. It makes a single attempt
// and returns the response body on success.
func (s *Session) SendCommands(ctx context.Context, deviceID string, commands []domain.DeviceCommand) ([]byte, error) {
	body, err := json.Marshal(commandsRequest{Commands: commands})
	if err != nil {
		return nil, fmt.Errorf("marshaling commands: %w", err)
	}

	path := fmt.Sprintf("/devices/%s/commands", deviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.client.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending commands to %s: %w", deviceID, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w %d for device %s: %s", ErrStatus, resp.StatusCode, deviceID, string(respBody))
	}

	return respBody, nil
}

func (s *Session) Close() {
	s.transport.CloseIdleConnections()
}
