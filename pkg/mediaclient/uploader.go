package mediaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

// HTTPUploader posts staged files to the upload pipeline as multipart forms
// and expects a JSON body of the form {"url": "..."}.
type HTTPUploader struct {
	client   *http.Client
	endpoint string
	token    string
}

// NewHTTPUploader creates an uploader for endpoint, e.g.
// "https://shop.example.com/v1/upload". token is sent as a bearer token
// when set.
func NewHTTPUploader(endpoint, token string, client *http.Client) *HTTPUploader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPUploader{client: client, endpoint: endpoint, token: token}
}

type uploadResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Upload sends file with the parent's identifiers as form fields.
func (u *HTTPUploader) Upload(ctx context.Context, parent Parent, file StagedFile) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	fields := map[string]string{
		"entity":    string(parent.Kind),
		"entity_id": strconv.FormatInt(parent.ID, 10),
		"store_id":  strconv.FormatInt(parent.StoreID, 10),
	}
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return "", err
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if u.token != "" {
		req.Header.Set("Authorization", "Bearer "+u.token)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", file.Name, err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&out); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("upload %s: invalid response: %w", file.Name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(out.Error)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("upload %s: %d %s", file.Name, resp.StatusCode, msg)
	}
	return out.URL, nil
}
