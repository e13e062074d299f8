package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	app "github.com/kode4food/nebula"
	"github.com/kode4food/nebula/pkg/api"
	"github.com/kode4food/nebula/pkg/log"
)

// HTTPTool delegates a transformation to a remote service. The state is
// posted as an api.ToolRequest and the api.ToolResult's state replaces it
type HTTPTool struct {
	httpClient *http.Client
	name       api.ToolName
	endpoint   string
}

const DefaultHTTPTimeout = 30 * time.Second

var (
	ErrToolUnsuccessful = errors.New("tool returned success=false")
	ErrHTTPError        = errors.New("tool returned HTTP error")
)

var userAgent = app.Name + "/" + app.Version

func NewHTTPTool(
	name api.ToolName, endpoint string, timeout time.Duration,
) *HTTPTool {
	return &HTTPTool{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		name:     name,
		endpoint: endpoint,
	}
}

// Transform posts st to the endpoint and returns the state it responds with
func (t *HTTPTool) Transform(st api.State) (api.State, error) {
	body, err := json.Marshal(api.ToolRequest{State: st})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		context.Background(), http.MethodPost, t.endpoint,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	dur := time.Since(start)
	if err != nil {
		slog.Error("HTTP request failed",
			log.Tool(t.name),
			slog.Duration("duration", dur),
			log.Error(err))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("HTTP error",
			log.Tool(t.name),
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(respBody)))
		return nil, fmt.Errorf("%w: HTTP %d", ErrHTTPError, resp.StatusCode)
	}

	var res api.ToolResult
	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, err
	}

	if !res.Success {
		if res.Error == "" {
			return nil, ErrToolUnsuccessful
		}
		return nil, fmt.Errorf("%w: %s", ErrToolUnsuccessful, res.Error)
	}

	if res.State == nil {
		return api.State{}, nil
	}
	return res.State, nil
}
