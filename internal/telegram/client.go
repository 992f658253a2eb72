// Package telegram is a small Bot API client plus the adapters that connect it to the
// conversation controller: update conversion, long polling and the webhook handler.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"resume-bot/internal/shared/telemetry"
)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// APIError is a Bot API response with ok=false.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api error %d: %s", e.Code, e.Description)
}

// Client calls Bot API methods with JSON bodies.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient constructs a client. A zero timeout means 90 seconds, enough for long polling.
func NewClient(baseURL, token string, timeout time.Duration, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		token:      token,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        telemetry.OrNop(log),
	}, nil
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, stripURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram %s read body: %w", method, err)
	}
	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("telegram %s http status %d: %s", method, resp.StatusCode, telemetry.Truncate(strings.TrimSpace(string(body)), 200))
	}
	if !parsed.OK {
		return &APIError{Code: parsed.ErrorCode, Description: parsed.Description}
	}
	if out == nil || len(parsed.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(parsed.Result, out); err != nil {
		return fmt.Errorf("telegram %s decode result: %w", method, err)
	}
	return nil
}

// GetUpdates long-polls for updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", getUpdatesParams{Offset: offset, Timeout: timeoutSeconds, AllowedUpdates: allowedUpdates}, &updates)
	return updates, err
}

// SendMessage sends text with an optional parse mode and inline keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text, parseMode string, markup *InlineKeyboardMarkup) error {
	return c.call(ctx, "sendMessage", sendMessageParams{ChatID: chatID, Text: text, ParseMode: parseMode, ReplyMarkup: markup}, nil)
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	return c.call(ctx, "answerCallbackQuery", answerCallbackParams{CallbackQueryID: callbackID, Text: text}, nil)
}

func (c *Client) AnswerPreCheckoutQuery(ctx context.Context, queryID string, ok bool, errorMessage string) error {
	return c.call(ctx, "answerPreCheckoutQuery", answerPreCheckoutParams{PreCheckoutQueryID: queryID, OK: ok, ErrorMessage: errorMessage}, nil)
}

func (c *Client) sendInvoice(ctx context.Context, params sendInvoiceParams) error {
	return c.call(ctx, "sendInvoice", params, nil)
}

// GetFile resolves a file id to a downloadable path.
func (c *Client) GetFile(ctx context.Context, fileID string) (File, error) {
	var f File
	if err := c.call(ctx, "getFile", getFileParams{FileID: fileID}, &f); err != nil {
		return File{}, err
	}
	if f.FilePath == "" {
		return File{}, fmt.Errorf("telegram getFile: empty file path for %s", fileID)
	}
	return f, nil
}

// DownloadFile fetches the bytes of a file returned by GetFile.
func (c *Client) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, strings.TrimLeft(filePath, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram download: %w", stripURL(err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram download http status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// SetWebhook registers the webhook URL and its secret header value.
func (c *Client) SetWebhook(ctx context.Context, webhookURL, secret string) error {
	return c.call(ctx, "setWebhook", setWebhookParams{URL: webhookURL, SecretToken: secret, AllowedUpdates: allowedUpdates}, nil)
}

// DeleteWebhook switches the bot back to getUpdates.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", struct{}{}, nil)
}

// stripURL drops the request URL from transport errors; it carries the bot token.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
