package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"proto-review-api/internal/dto"
)

// CommentAPI is the client-side view of the comment service. PageSession
// consumes it; tests substitute a fake.
type CommentAPI interface {
	ListComments(ctx context.Context, pageID string, resolved *bool) ([]dto.CommentResponse, error)
	CreateComment(ctx context.Context, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	UpdateComment(ctx context.Context, commentID string, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, commentID string) error
}

type commentClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// envelope mirrors the service's response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewCommentClient creates an HTTP-backed CommentAPI. The token is sent
// as a bearer credential on every request.
func NewCommentClient(baseURL, token string, timeout time.Duration) CommentAPI {
	return &commentClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *commentClient) do(ctx context.Context, method, url string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: status=%d: %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		if env.Error != nil {
			return nil, fmt.Errorf("request failed: status=%d, code=%s, message=%s",
				resp.StatusCode, env.Error.Code, env.Error.Message)
		}
		return nil, fmt.Errorf("request failed: status=%d", resp.StatusCode)
	}

	return env.Data, nil
}

func (c *commentClient) ListComments(ctx context.Context, pageID string, resolved *bool) ([]dto.CommentResponse, error) {
	url := fmt.Sprintf("%s/comments?pageId=%s", c.baseURL, pageID)
	if resolved != nil {
		url = fmt.Sprintf("%s&resolved=%t", url, *resolved)
	}

	data, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var result dto.ListCommentsResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode comment list: %w", err)
	}

	return result.Comments, nil
}

func (c *commentClient) CreateComment(ctx context.Context, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	data, err := c.do(ctx, http.MethodPost, fmt.Sprintf("%s/comments", c.baseURL), req)
	if err != nil {
		return nil, err
	}

	var result dto.CommentResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode comment: %w", err)
	}

	return &result, nil
}

func (c *commentClient) UpdateComment(ctx context.Context, commentID string, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	data, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("%s/comments/%s", c.baseURL, commentID), req)
	if err != nil {
		return nil, err
	}

	var result dto.CommentResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode comment: %w", err)
	}

	return &result, nil
}

func (c *commentClient) DeleteComment(ctx context.Context, commentID string) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/comments/%s", c.baseURL, commentID), nil)
	return err
}
