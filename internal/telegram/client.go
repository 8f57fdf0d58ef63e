// Package telegram implements a thin client for the Telegram Bot API
// covering the operations the clone host consumes: identity, webhook
// management, membership queries, and protected media sends.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBytes prevents unbounded reads from API responses.
const maxResponseBytes = 10 << 20 // 10 MiB

// DefaultTimeout bounds every outbound call when no timeout is configured.
// The webhook contract answers Telegram synchronously, so a slow Bot API
// call must not stall a request indefinitely.
const DefaultTimeout = 30 * time.Second

// Client is a thin HTTP wrapper around the Telegram Bot API for one bot token.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Bot API client. A non-positive timeout falls back
// to DefaultTimeout.
func NewClient(token, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		token:   token,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// do sends a JSON POST request to the given Bot API method and decodes the
// response envelope. API-level failures come back as *APIError.
func do[T any](ctx context.Context, c *Client, method string, payload any) (*T, error) {
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("telegram: marshal %s request: %w", method, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("telegram: create %s request: %w", method, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Wrap without the raw error text in the message to avoid leaking
		// the token-bearing URL. The original error is available via Unwrap.
		return nil, fmt.Errorf("telegram: %s request failed: %w", method, err)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("telegram: read %s response: %w", method, err)
	}

	var apiResp APIResponse[T]
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("telegram: decode %s response: %w", method, err)
	}

	if !apiResp.OK {
		return nil, &APIError{
			Code:        apiResp.ErrorCode,
			Description: apiResp.Description,
		}
	}

	return &apiResp.Result, nil
}

// SetWebhookRequest is the request body for the setWebhook method.
type SetWebhookRequest struct {
	URL            string   `json:"url"`
	SecretToken    string   `json:"secret_token,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// SendMessageRequest is the request body for the sendMessage method.
type SendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// SendDocumentRequest is the request body for the sendDocument method.
type SendDocumentRequest struct {
	ChatID         int64  `json:"chat_id"`
	Document       string `json:"document"`
	Caption        string `json:"caption,omitempty"`
	ProtectContent bool   `json:"protect_content,omitempty"`
}

// SendPhotoRequest is the request body for the sendPhoto method.
type SendPhotoRequest struct {
	ChatID         int64  `json:"chat_id"`
	Photo          string `json:"photo"`
	Caption        string `json:"caption,omitempty"`
	ProtectContent bool   `json:"protect_content,omitempty"`
}

// SendVideoRequest is the request body for the sendVideo method.
type SendVideoRequest struct {
	ChatID         int64  `json:"chat_id"`
	Video          string `json:"video"`
	Caption        string `json:"caption,omitempty"`
	ProtectContent bool   `json:"protect_content,omitempty"`
}

// getChatMemberRequest is the request body for the getChatMember method.
// ChatID is a string to allow the "@channelname" form.
type getChatMemberRequest struct {
	ChatID string `json:"chat_id"`
	UserID int64  `json:"user_id"`
}

// GetMe returns the bot's user information.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	return do[User](ctx, c, "getMe", nil)
}

// SetWebhook configures the webhook URL for receiving updates.
func (c *Client) SetWebhook(ctx context.Context, req SetWebhookRequest) error {
	_, err := do[bool](ctx, c, "setWebhook", req)
	return err
}

// DeleteWebhook removes the current webhook integration.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	_, err := do[bool](ctx, c, "deleteWebhook", nil)
	return err
}

// SendMessage sends a text message to the specified chat.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	return do[Message](ctx, c, "sendMessage", req)
}

// SendDocument sends a document to the specified chat.
func (c *Client) SendDocument(ctx context.Context, req SendDocumentRequest) (*Message, error) {
	return do[Message](ctx, c, "sendDocument", req)
}

// SendPhoto sends a photo to the specified chat.
func (c *Client) SendPhoto(ctx context.Context, req SendPhotoRequest) (*Message, error) {
	return do[Message](ctx, c, "sendPhoto", req)
}

// SendVideo sends a video to the specified chat.
func (c *Client) SendVideo(ctx context.Context, req SendVideoRequest) (*Message, error) {
	return do[Message](ctx, c, "sendVideo", req)
}

// GetChatMember returns the membership state of a user in a chat.
// chatID accepts the "@channelname" form.
func (c *Client) GetChatMember(ctx context.Context, chatID string, userID int64) (*ChatMember, error) {
	return do[ChatMember](ctx, c, "getChatMember", getChatMemberRequest{
		ChatID: chatID,
		UserID: userID,
	})
}
