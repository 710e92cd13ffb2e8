// Package builder is the REST client for the remote build/grading backend.
// All methods map to the backend's /api/v1/ surface; any non-200 response is
// a hard failure.
package builder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"psjudge_frontend/internal/common"
	"psjudge_frontend/internal/common/validate"
)

// Report is the build backend's report for one finished build.
type Report struct {
	UUID        string
	Status      string
	Exception   string
	BuildLog    string
	TestsLog    string
	TestsPassed int
	TestsTotal  int
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given API base URL, e.g.
// "http://localhost:8081/api/v1/". The client is stateless and safe to share
// process-wide; call deadlines come from the caller's context.
func NewClient(baseURL string) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// RegisterBuild submits a commit's source to the backend for building and
// grading. The backend echoes the build uuid back; a mismatch is an error.
func (c *Client) RegisterBuild(ctx context.Context, uuid, assignmentUUID, language, source string) error {
	params := map[string]interface{}{
		"uuid":            uuid,
		"assignment_uuid": assignmentUUID,
		"language":        language,
		"source":          source,
	}
	response, err := c.sendPost(ctx, "build/new", params)
	if err != nil {
		return err
	}
	echo, err := validate.String(response["uuid"])
	if err != nil {
		return common.Errorf("builder api build/new: %w", err)
	}
	if echo != uuid {
		return common.Errorf("builder api build/new echoed uuid %q, want %q", echo, uuid)
	}
	return nil
}

// RegisterTestCase registers one input/expected pair for an assignment.
func (c *Client) RegisterTestCase(ctx context.Context, uuid, assignmentUUID, input, expected string) error {
	params := map[string]interface{}{
		"uuid":            uuid,
		"assignment_uuid": assignmentUUID,
		"input":           input,
		"expected":        expected,
	}
	response, err := c.sendPost(ctx, "testcase/new", params)
	if err != nil {
		return err
	}
	echo, err := validate.String(response["uuid"])
	if err != nil {
		return common.Errorf("builder api testcase/new: %w", err)
	}
	if echo != uuid {
		return common.Errorf("builder api testcase/new echoed uuid %q, want %q", echo, uuid)
	}
	return nil
}

// BuildStatus queries the current status of a build.
func (c *Client) BuildStatus(ctx context.Context, uuid string) (string, error) {
	response, err := c.sendGet(ctx, "build/status/"+uuid)
	if err != nil {
		return "", err
	}
	status, err := validate.String(response["status"])
	if err != nil {
		return "", common.Errorf("builder api build/status: %w", err)
	}
	return status, nil
}

// BuildReport fetches the report of a finished build.
func (c *Client) BuildReport(ctx context.Context, uuid string) (*Report, error) {
	response, err := c.sendGet(ctx, "build/report/"+uuid)
	if err != nil {
		return nil, err
	}
	report := &Report{}
	if report.UUID, err = validate.String(response["uuid"]); err != nil {
		return nil, common.Errorf("builder api build/report uuid: %w", err)
	}
	if report.Status, err = validate.String(response["status"]); err != nil {
		return nil, common.Errorf("builder api build/report status: %w", err)
	}
	if report.TestsPassed, err = validate.Int(response["tests_passed"]); err != nil {
		return nil, common.Errorf("builder api build/report tests_passed: %w", err)
	}
	if report.TestsTotal, err = validate.Int(response["tests_total"]); err != nil {
		return nil, common.Errorf("builder api build/report tests_total: %w", err)
	}
	// Log fields may be absent while the build is being archived.
	if v, ok := response["exception"]; ok {
		report.Exception, _ = validate.String(v)
	}
	if v, ok := response["build_log"]; ok {
		report.BuildLog, _ = validate.String(v)
	}
	if v, ok := response["tests_log"]; ok {
		report.TestsLog, _ = validate.String(v)
	}
	return report, nil
}

func (c *Client) sendGet(ctx context.Context, method string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+method, nil)
	if err != nil {
		return nil, common.Errorf("builder api GET %q: %w", method, err)
	}
	return c.do(req, method)
}

func (c *Client) sendPost(ctx context.Context, method string, payload interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, common.Errorf("builder api POST %q: marshal: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+method, bytes.NewReader(data))
	if err != nil {
		return nil, common.Errorf("builder api POST %q: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, method)
}

func (c *Client) do(req *http.Request, method string) (map[string]interface{}, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, common.Errorf("builder api %s %q: %v: %w", req.Method, method, err, common.ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, common.Errorf("builder api %s %q returned %d: %s: %w",
			req.Method, method, resp.StatusCode, strings.TrimSpace(string(body)), common.ErrServiceUnavailable)
	}

	var value map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&value); err != nil {
		return nil, common.Errorf("builder api %s %q: decode response: %w", req.Method, method, err)
	}
	return value, nil
}
