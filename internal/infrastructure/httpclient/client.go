package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"restpki-batch/internal/config"
	"restpki-batch/internal/domain/entity"
	"restpki-batch/internal/infrastructure/metrics"
)

const (
	maxBodyLogLength = 500 // Maximum characters to log for body
)

var (
	base64Pattern = regexp.MustCompile(`"([A-Za-z0-9+/=]{100,})"`)
	tokenSegment  = regexp.MustCompile(`/[A-Za-z0-9_-]{43}(/|$)`)
)

// RequestContext ties an outbound call to the document being signed
type RequestContext struct {
	DocumentID string
}

type HTTPClient interface {
	// Get performs an authenticated GET against REST PKI
	Get(ctx context.Context, reqCtx *RequestContext, path string, result interface{}) error
	// Post performs an authenticated POST against REST PKI, body may be nil
	Post(ctx context.Context, reqCtx *RequestContext, path string, body interface{}, result interface{}) error
}

// APILogSaver interface for saving API logs
type APILogSaver interface {
	Save(ctx context.Context, log *entity.APILog) error
}

type httpClient struct {
	client      *http.Client
	baseURL     string
	accessToken string
	apiLogSaver APILogSaver
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewHTTPClient(cfg *config.Config, apiLogSaver APILogSaver, m *metrics.Metrics, logger *zap.Logger) HTTPClient {
	logger.Info("REST PKI client initialized",
		zap.String("base_url", cfg.RestPKI.BaseURL),
		zap.Duration("timeout", cfg.RestPKI.Timeout),
	)

	return &httpClient{
		client: &http.Client{
			Timeout: cfg.RestPKI.Timeout,
		},
		baseURL:     cfg.RestPKI.BaseURL,
		accessToken: cfg.RestPKI.AccessToken,
		apiLogSaver: apiLogSaver,
		metrics:     m,
		logger:      logger,
	}
}

// truncateString truncates a string if it exceeds maxLength
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + fmt.Sprintf("... [truncated, total %d chars]", len(s))
}

// truncateBase64InJSON truncates base64-like values in JSON string
func truncateBase64InJSON(jsonStr string, maxLength int) string {
	return base64Pattern.ReplaceAllStringFunc(jsonStr, func(match string) string {
		content := match[1 : len(match)-1]
		if len(content) > maxLength {
			return fmt.Sprintf(`"%s... [base64 truncated, total %d chars]"`, content[:maxLength], len(content))
		}
		return match
	})
}

// formatHeadersForLog formats HTTP headers for logging in "Header Key=Value" format
func formatHeadersForLog(headers http.Header) string {
	var sb strings.Builder
	for key, values := range headers {
		for _, value := range values {
			if strings.EqualFold(key, "Authorization") {
				value = "Bearer ***"
			}
			if len(value) > 100 {
				value = value[:100] + "..."
			}
			sb.WriteString(fmt.Sprintf("Header %s=%s\n", key, value))
		}
	}
	return sb.String()
}

// operationLabel turns "Api/PadesSignatures/{token}/Finalize?x=1" into a
// low-cardinality metric label.
func operationLabel(method, path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = tokenSegment.ReplaceAllString(path, "/{token}$1")
	return method + " " + path
}

func (c *httpClient) logRequest(method, url string, headers http.Header, body []byte) {
	var logBuilder strings.Builder

	logBuilder.WriteString("\n>>> [RESTPKI-REQ]\n")
	logBuilder.WriteString(fmt.Sprintf("Method: %s\n", method))
	logBuilder.WriteString(fmt.Sprintf("URL: %s\n", url))
	logBuilder.WriteString(formatHeadersForLog(headers))

	if len(body) > 0 {
		bodyStr := truncateBase64InJSON(string(body), 100)
		bodyStr = truncateString(bodyStr, maxBodyLogLength)
		logBuilder.WriteString(fmt.Sprintf("REQUEST BODY: %s\n", bodyStr))
	}

	c.logger.Info(logBuilder.String())
}

func (c *httpClient) logResponse(statusCode int, statusText string, duration time.Duration, headers http.Header, body []byte) {
	var logBuilder strings.Builder

	logBuilder.WriteString("\n>>> [RESTPKI-RESPONSE]\n")
	logBuilder.WriteString(fmt.Sprintf("Status: %d %s\n", statusCode, statusText))
	logBuilder.WriteString(fmt.Sprintf("Duration: %s\n", duration))
	logBuilder.WriteString(formatHeadersForLog(headers))

	bodyStr := truncateBase64InJSON(string(body), 100)
	bodyStr = truncateString(bodyStr, maxBodyLogLength)
	logBuilder.WriteString(fmt.Sprintf("Body: %s\n", bodyStr))

	c.logger.Info(logBuilder.String())
}

// saveAPILog persists the request/response pair without blocking the caller
func (c *httpClient) saveAPILog(method, endpoint string, requestBody []byte, responseBody []byte, statusCode int, duration time.Duration, reqCtx *RequestContext) {
	if c.apiLogSaver == nil {
		return
	}

	reqBodyStr := ""
	if len(requestBody) > 0 {
		reqBodyStr = truncateBase64InJSON(string(requestBody), 100)
		if len(reqBodyStr) > 10000 {
			reqBodyStr = reqBodyStr[:10000] + "... [truncated]"
		}
	}

	respBodyStr := truncateBase64InJSON(string(responseBody), 100)
	if len(respBodyStr) > 10000 {
		respBodyStr = respBodyStr[:10000] + "... [truncated]"
	}

	apiLog := &entity.APILog{
		Endpoint:     endpoint,
		Method:       method,
		RequestBody:  reqBodyStr,
		ResponseBody: respBodyStr,
		StatusCode:   statusCode,
		Duration:     duration.Milliseconds(),
		CreatedAt:    time.Now(),
	}
	if reqCtx != nil {
		apiLog.DocumentID = reqCtx.DocumentID
	}

	go func() {
		if err := c.apiLogSaver.Save(context.Background(), apiLog); err != nil {
			c.logger.Warn("Failed to save API log to database",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
		}
	}()
}

func (c *httpClient) doRequest(ctx context.Context, reqCtx *RequestContext, method, path string, body interface{}, result interface{}) error {
	fullURL := c.baseURL + strings.TrimPrefix(path, "/")
	operation := operationLabel(method, path)

	var bodyReader io.Reader
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	c.logRequest(method, fullURL, req.Header, jsonBody)

	startTime := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.ObserveRestPKI(operation, "unreachable", time.Since(startTime))
		return fmt.Errorf("%w: %s %s: %v", ErrUnreachable, method, fullURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	duration := time.Since(startTime)
	if err != nil {
		c.metrics.ObserveRestPKI(operation, "unreachable", duration)
		return fmt.Errorf("%w: failed to read response body: %v", ErrUnreachable, err)
	}

	c.metrics.ObserveRestPKI(operation, strconv.Itoa(resp.StatusCode), duration)
	c.logResponse(resp.StatusCode, resp.Status, duration, resp.Header, respBody)
	c.saveAPILog(method, fullURL, jsonBody, respBody, resp.StatusCode, duration, reqCtx)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody errorBody
		// Non-JSON error bodies (proxies, HTML pages) still produce a RestError
		_ = json.Unmarshal(respBody, &errBody)
		restErr := newRestError(method, fullURL, resp.StatusCode, errBody)

		c.logger.Warn("REST PKI request failed",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode),
			zap.String("code", restErr.Code),
			zap.String("detail", restErr.Detail),
		)
		return restErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

func (c *httpClient) Get(ctx context.Context, reqCtx *RequestContext, path string, result interface{}) error {
	return c.doRequest(ctx, reqCtx, http.MethodGet, path, nil, result)
}

func (c *httpClient) Post(ctx context.Context, reqCtx *RequestContext, path string, body interface{}, result interface{}) error {
	return c.doRequest(ctx, reqCtx, http.MethodPost, path, body, result)
}
