// Package media talks to the hosted image store: bytes in, durable URL out.
package media

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"cakeshop/internal/config"
)

const (
	// MaxFileSize is the upload size limit (10MB)
	MaxFileSize = 10 * 1024 * 1024

	// UploadTimeout bounds the upstream call; past it the upload is failed,
	// never retried.
	UploadTimeout = 25 * time.Second
)

var (
	ErrNotConfigured = errors.New("media storage is not configured")
	ErrUploadFailed  = errors.New("media upload failed")
)

// Uploader accepts an image blob and returns a stable URL
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
	Configured() bool
}

// Client uploads to a Cloudinary-style signed upload endpoint
type Client struct {
	cfg        config.MediaConfig
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client from media config. A client with incomplete
// credentials is still usable for Configured checks; Upload returns
// ErrNotConfigured.
func NewClient(cfg config.MediaConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: UploadTimeout},
		baseURL:    "https://api.cloudinary.com/v1_1",
	}
}

// Configured reports whether credentials are complete
func (c *Client) Configured() bool {
	return c.cfg.Configured()
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends the image to the media store and returns its secure URL
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := c.sign(timestamp)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write upload payload: %w", err)
	}

	fields := map[string]string{
		"api_key":   c.cfg.APIKey,
		"timestamp": timestamp,
		"signature": signature,
		"folder":    c.cfg.Folder,
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return "", fmt.Errorf("failed to write upload field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	url := fmt.Sprintf("%s/%s/image/upload", c.baseURL, c.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrUploadFailed, err)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: invalid response", ErrUploadFailed)
	}

	if resp.StatusCode != http.StatusOK {
		msg := parsed.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, msg)
	}

	if parsed.SecureURL == "" {
		return "", fmt.Errorf("%w: no URL in response", ErrUploadFailed)
	}

	return parsed.SecureURL, nil
}

// sign produces the request signature over the signed parameters, sorted
// alphabetically, followed by the API secret.
func (c *Client) sign(timestamp string) string {
	toSign := fmt.Sprintf("folder=%s&timestamp=%s%s", c.cfg.Folder, timestamp, c.cfg.APISecret)
	sum := sha1.Sum([]byte(toSign))
	return hex.EncodeToString(sum[:])
}
