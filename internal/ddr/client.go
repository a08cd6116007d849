package ddr

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"ddrpub/internal/config"
	"ddrpub/internal/logging"
	"ddrpub/internal/services"
)

const zipFormField = "zip_file"

// Operation names match the remote endpoints they drive.
const (
	OpLogin     = "login"
	OpValidate  = "validate"
	OpPublish   = "publish"
	OpUnpublish = "unpublish"
)

// HTTPDoer abstracts the HTTP client for tests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client issues the DDR publication operations over HTTP.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	session    *Session
	logger     *slog.Logger
}

// NewClient builds a client from configuration. The session gates all
// authenticated calls.
func NewClient(cfg *config.Config, session *Session, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	transport := http.DefaultTransport
	if cfg.DDR.InsecureSkipVerify {
		cloned := http.DefaultTransport.(*http.Transport).Clone()
		cloned.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		transport = cloned
	}
	return &Client{
		baseURL: cfg.DDR.BaseURL,
		httpClient: &http.Client{
			Timeout:   time.Duration(cfg.DDR.RequestTimeout) * time.Second,
			Transport: transport,
		},
		session: session,
		logger:  logger,
	}
}

// WithHTTPClient overrides the HTTP client (used in tests).
func (c *Client) WithHTTPClient(doer HTTPDoer) *Client {
	c.httpClient = doer
	return c
}

// Session exposes the session manager backing this client.
func (c *Client) Session() *Session { return c.session }

func (c *Client) endpoint(name string) string {
	return c.baseURL + "/api/" + name
}

// Login exchanges username/password for a bearer credential, installs it in
// the session, and returns it. Error bodies on 400/401 are surfaced with
// their bilingual details.
func (c *Client) Login(ctx context.Context, username, password string) (*Credential, error) {
	url := c.endpoint("login")
	payload, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, fmt.Errorf("encode login payload: %w", err)
	}

	c.logger.Info("authentication to DDR", logging.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.send(req, OpLogin, url)
	if err != nil {
		return nil, err
	}

	result, err := interpret(OpLogin, http.StatusOK, status, body, url)
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		for _, line := range result.FeedbackLines() {
			c.logger.Error(line, logging.Int("status", result.Status))
		}
		return nil, classify(result)
	}

	var cred Credential
	if err := json.Unmarshal(body, &cred); err != nil || cred.AccessToken == "" {
		return nil, services.Wrap(services.ErrProtocol, "remote", OpLogin,
			"login response is missing the access token", err)
	}
	cred.IssuedAt = time.Now().UTC()
	if err := c.session.SetCredential(cred); err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}

	c.logger.Info("a token was issued to the user",
		logging.Int("expires_in", cred.ExpiresIn),
		logging.Int("refresh_expires_in", cred.RefreshExpiresIn),
		logging.String("token_type", cred.TokenType))
	return &cred, nil
}

// FetchThemes retrieves the czs_themes catalog body.
func (c *Client) FetchThemes(ctx context.Context) ([]byte, error) {
	return c.fetchCatalog(ctx, "czs_themes")
}

// FetchDepartments retrieves the ddr_departments catalog body.
func (c *Client) FetchDepartments(ctx context.Context) ([]byte, error) {
	return c.fetchCatalog(ctx, "ddr_departments")
}

// FetchEmail retrieves the ddr_my_email body.
func (c *Client) FetchEmail(ctx context.Context) ([]byte, error) {
	return c.fetchCatalog(ctx, "ddr_my_email")
}

func (c *Client) fetchCatalog(ctx context.Context, name string) ([]byte, error) {
	url := c.endpoint(name)
	req, err := c.authenticatedRequest(ctx, http.MethodGet, url, nil, "")
	if err != nil {
		return nil, err
	}

	c.logger.Info("HTTP get request", logging.String("url", url))
	status, body, err := c.send(req, name, url)
	if err != nil {
		return nil, err
	}

	result, err := interpret(name, http.StatusOK, status, body, url)
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, classify(result)
	}
	return body, nil
}

// Validate uploads the archive for validation. The service answers 200 with
// a validation report document.
func (c *Client) Validate(ctx context.Context, archivePath string) (*Result, error) {
	return c.upload(ctx, OpValidate, http.MethodPost, c.endpoint("validate"), http.StatusOK, archivePath)
}

// Publish uploads the archive for publication. Success is 204.
func (c *Client) Publish(ctx context.Context, archivePath string) (*Result, error) {
	return c.upload(ctx, OpPublish, http.MethodPut, c.endpoint("processes"), http.StatusNoContent, archivePath)
}

// Unpublish uploads the archive to delete the published service. Success is 204.
func (c *Client) Unpublish(ctx context.Context, archivePath string) (*Result, error) {
	return c.upload(ctx, OpUnpublish, http.MethodDelete, c.endpoint("processes"), http.StatusNoContent, archivePath)
}

func (c *Client) upload(ctx context.Context, operation, method, url string, wantStatus int, archivePath string) (*Result, error) {
	body, contentType, err := multipartArchive(archivePath)
	if err != nil {
		return nil, err
	}

	req, err := c.authenticatedRequest(ctx, method, url, body, contentType)
	if err != nil {
		return nil, err
	}

	c.logger.Info("sending archive to DDR",
		logging.String("url", url),
		logging.String("method", method),
		logging.String("zip_file", archivePath))

	status, respBody, err := c.send(req, operation, url)
	if err != nil {
		return nil, err
	}

	result, err := interpret(operation, wantStatus, status, respBody, url)
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return result, classify(result)
	}
	return result, nil
}

// authenticatedRequest builds a request carrying the bearer token. The token
// check happens before any request is issued: without a login the operation
// fails locally with ErrNotAuthenticated.
func (c *Client) authenticatedRequest(ctx context.Context, method, url string, body io.Reader, contentType string) (*http.Request, error) {
	token, err := c.session.Token()
	if err != nil {
		return nil, services.Wrap(services.ErrAuthentication, "remote", "", "", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// send performs the request and normalizes transport-level failures into the
// uniform transport error carrying the operation and URL.
func (c *Client) send(req *http.Request, operation, url string) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, services.Wrap(services.ErrTransport, "remote", operation,
			"major problem with the DDR Publication API: "+url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, services.Wrap(services.ErrTransport, "remote", operation,
			"major problem with the DDR Publication API: "+url, err)
	}
	return resp.StatusCode, body, nil
}

// multipartArchive buffers the archive into a multipart form body under the
// zip_file field.
func multipartArchive(archivePath string) (io.Reader, string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return nil, "", fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(zipFormField, filepath.Base(archivePath))
	if err != nil {
		return nil, "", fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("read archive: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finish multipart form: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}
