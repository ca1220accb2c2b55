package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hearth-app/hearth/internal/daemon"
)

// apiClient is a thin HTTP client for a running hearth daemon.
type apiClient struct {
	base   string
	client *http.Client
}

func newAPIClient(cfg daemon.Config) *apiClient {
	return &apiClient{
		base:   fmt.Sprintf("http://%s:%d", cfg.API.Host, cfg.API.Port),
		client: &http.Client{Timeout: 3 * time.Second},
	}
}

func (c *apiClient) get(path string, out interface{}) error {
	resp, err := c.client.Get(c.base + path)
	if err != nil {
		return c.unreachable()
	}
	return c.decode(resp, out)
}

func (c *apiClient) post(path string, out interface{}) error {
	resp, err := c.client.Post(c.base+path, "application/json", nil)
	if err != nil {
		return c.unreachable()
	}
	return c.decode(resp, out)
}

func (c *apiClient) decode(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%s", apiErr.Error.Message)
		}
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) unreachable() error {
	return fmt.Errorf("hearth daemon is not running at %s (start it with 'hearth serve')", c.base)
}
