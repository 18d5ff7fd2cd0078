// Package client 负责调用远端生成服务，并把响应归一化为 Result。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"content_generation_suite/form"
	"content_generation_suite/logger"
)

const (
	// GeneratePath 相对 BASE_URL 的生成接口路径。
	GeneratePath = "/generate"
	// RequestIDHeader 用于关联客户端与服务端日志。
	RequestIDHeader = "X-Request-ID"
)

// Client posts form input to the generation service.
// It does not retry, cache or deduplicate; overlapping calls all go out.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// New 创建 Client。httpClient 为 nil 时不额外设置超时，沿用 transport 默认行为。
func New(baseURL string, httpClient *http.Client, l *slog.Logger) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base url is required; set BASE_URL")
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if l == nil {
		l = logger.Default()
	}
	return &Client{
		endpoint: baseURL + GeneratePath,
		http:     httpClient,
		logger:   l,
	}, nil
}

// Endpoint 返回完整的生成接口地址。
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit 发送一次生成请求。错误总是 *Error。
func (c *Client) Submit(ctx context.Context, in form.Input) (Result, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return Result{}, &Error{Kind: KindValidation, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, &Error{Kind: KindNetwork, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	log := c.logger.With(string(logger.RequestIDKey), reqID)
	if seq := ctx.Value(logger.SeqKey); seq != nil {
		log = log.With(string(logger.SeqKey), seq)
	}
	log.Info("[client] submitting", "content_type", in.ContentType, "topic", in.Topic, "tone", in.Tone)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("[client] request failed", "error", err)
		return Result{}, &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		log.Warn("[client] non-success status", "status", resp.StatusCode)
		return Result{}, &Error{Kind: KindHTTP, Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("[client] reading body failed", "error", err)
		return Result{}, &Error{Kind: KindNetwork, Err: err}
	}

	res, err := Normalize(raw)
	if err != nil {
		log.Warn("[client] response is not JSON", "bytes", len(raw))
		return Result{}, &Error{Kind: KindMalformedResponse, Err: err}
	}
	log.Debug("[client] response received", "shape", res.Shape.String(), "payload", string(raw))
	return res, nil
}
