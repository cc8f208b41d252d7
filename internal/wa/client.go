package wa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vivaahlink/vivaah-backend/internal/logger"
)

// ButtonOption is one reply button offered to the user.
type ButtonOption struct {
	ID    string
	Title string
}

// Sender is the outbound half of the messaging transport. The pipeline only
// ever talks to this interface; delivery lives behind it.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
	SendTemplate(ctx context.Context, to, templateName string) error
	SendButtons(ctx context.Context, to, bodyText string, buttons []ButtonOption) error
}

// MediaDownloader fetches inbound media (biodata PDFs) by media id.
type MediaDownloader interface {
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, error)
}

type Client struct {
	log           *logger.Logger
	baseURL       string
	accessToken   string
	phoneNumberID string
	httpClient    *http.Client
}

func NewClient(log *logger.Logger) (*Client, error) {
	accessToken := os.Getenv("WA_ACCESS_TOKEN")
	if accessToken == "" {
		return nil, fmt.Errorf("missing WA_ACCESS_TOKEN")
	}
	phoneNumberID := os.Getenv("WA_PHONE_NUMBER_ID")
	if phoneNumberID == "" {
		return nil, fmt.Errorf("missing WA_PHONE_NUMBER_ID")
	}

	baseURL := os.Getenv("WA_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v19.0"
	}

	timeoutSec := 30
	if v := os.Getenv("WA_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &Client{
		log:           log.With("service", "WhatsAppClient"),
		baseURL:       baseURL,
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		httpClient:    &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

func (c *Client) sendMessage(ctx context.Context, payload map[string]any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp api %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

func (c *Client) SendText(ctx context.Context, to, body string) error {
	return c.sendMessage(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]any{"body": body},
	})
}

func (c *Client) SendTemplate(ctx context.Context, to, templateName string) error {
	return c.sendMessage(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "template",
		"template": map[string]any{
			"name":     templateName,
			"language": map[string]any{"code": "en"},
		},
	})
}

func (c *Client) SendButtons(ctx context.Context, to, bodyText string, buttons []ButtonOption) error {
	btns := make([]map[string]any, 0, len(buttons))
	for _, b := range buttons {
		btns = append(btns, map[string]any{
			"type": "reply",
			"reply": map[string]any{
				"id":    b.ID,
				"title": b.Title,
			},
		})
	}
	return c.sendMessage(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]any{
			"type":   "button",
			"body":   map[string]any{"text": bodyText},
			"action": map[string]any{"buttons": btns},
		},
	})
}

// DownloadMedia resolves a media id to its transient URL and fetches the
// bytes. Both requests carry the access token.
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) ([]byte, error) {
	infoURL := fmt.Sprintf("%s/%s", c.baseURL, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, infoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media info download: %w", err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("media info download %d: %s", resp.StatusCode, string(raw))
	}

	var info struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("media info decode: %w", err)
	}

	mediaReq, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return nil, err
	}
	mediaReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	mediaResp, err := c.httpClient.Do(mediaReq)
	if err != nil {
		return nil, fmt.Errorf("media download: %w", err)
	}
	defer mediaResp.Body.Close()

	if mediaResp.StatusCode < 200 || mediaResp.StatusCode >= 300 {
		body, _ := io.ReadAll(mediaResp.Body)
		return nil, fmt.Errorf("media download %d: %s", mediaResp.StatusCode, string(body))
	}
	return io.ReadAll(mediaResp.Body)
}
