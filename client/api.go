package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"sortie/entities"
)

// API is the server surface the conversation view depends on.
type API interface {
	History(ctx context.Context, conversationID string) ([]entities.Message, error)
	Send(ctx context.Context, req entities.CreateMessageRequest) (*entities.Message, error)
}

type HTTPAPI struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPAPI(baseURL, token string) *HTTPAPI {
	return &HTTPAPI{baseURL: baseURL, token: token, client: http.DefaultClient}
}

func (a *HTTPAPI) History(ctx context.Context, conversationID string) ([]entities.Message, error) {
	url := fmt.Sprintf("%s/conversations/%s/messages", a.baseURL, conversationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build history request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history request returned status %d", resp.StatusCode)
	}

	var history []entities.Message
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}

	return history, nil
}

func (a *HTTPAPI) Send(ctx context.Context, msg entities.CreateMessageRequest) (*entities.Message, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("send request returned status %d", resp.StatusCode)
	}

	var created entities.Message
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode created message: %w", err)
	}

	return &created, nil
}
