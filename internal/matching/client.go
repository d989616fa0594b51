package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the external matching microservice that groups candidate
// players into teams.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a matching service client. An empty baseURL yields a nil
// client; callers treat nil as "matching service not configured".
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateMatchRequest mirrors the matching service's create payload.
type CreateMatchRequest struct {
	RoomID      string         `json:"room_id"`
	GroupChoice string         `json:"group_choice"`
	SlotChoice  string         `json:"slot_choice"`
	Params      map[string]int `json:"params"`
}

// CreateMatchResponse carries the grouped member IDs per group name.
type CreateMatchResponse struct {
	Groups map[string][]string `json:"groups"`
}

// CreateMatch asks the service to group the room's members. The room ID is
// the order ID in string form; min_users is the smallest viable team.
func (c *Client) CreateMatch(ctx context.Context, roomID string, minUsers int) (*CreateMatchResponse, error) {
	reqBody := CreateMatchRequest{
		RoomID:      roomID,
		GroupChoice: "random",
		SlotChoice:  "fixed_min",
		Params:      map[string]int{"min_users": minUsers},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal matching request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/matching/create", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build matching request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call matching service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read matching response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("matching service returned %d: %s", resp.StatusCode, body)
	}

	var result CreateMatchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode matching response: %w", err)
	}
	return &result, nil
}
