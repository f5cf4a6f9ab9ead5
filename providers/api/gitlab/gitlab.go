/*
Package gitlab provides a client for the GitLab repository and pipeline API.

The release workflow uses it to wait for a pushed tag to appear on the
GitLab mirror and to create the build pipeline for that tag.
*/
package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-querystring/query"
)

// gitlabHostname - GitLab API hostname (used as default API).
var gitlabHostname string = "https://gitlab.com"

// Client is used to send API requests to a GitLab project.
type Client struct {
	baseURL    url.URL
	project    string // URL-encoded 'namespace/project' path
	token      string
	HttpClient *http.Client
}

// NewClient creates and returns a new client for one GitLab project.
//
// If a nil URL is provided, the client is configured for gitlab.com.
// project is the 'namespace/project' path of the target project, token is a
// personal or CI access token (sent as PRIVATE-TOKEN on every request).
func NewClient(httpClient *http.Client, URL *url.URL, project, token string) (*Client, error) {
	if project == "" {
		return nil, fmt.Errorf("'project' option is required for a gitlab client")
	}

	// Generate gitlab.com default client if no URL provided.
	if URL == nil {
		var err error
		if URL, err = url.Parse(gitlabHostname); err != nil {
			return nil, err
		}
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    *URL,
		project:    url.PathEscape(project),
		token:      token,
		HttpClient: httpClient,
	}, nil
}

// Tag represents one repository tag.
type Tag struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Target  string `json:"target"`
	Commit  struct {
		ID        string    `json:"id"`
		ShortID   string    `json:"short_id"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"commit"`
}

// FindTag fetches a single repository tag by name.
func (c Client) FindTag(ctx context.Context, name string) (*Tag, *http.Response, error) {
	if name == "" {
		return nil, nil, fmt.Errorf("'name' option is required for a tag request")
	}

	route := fmt.Sprintf("%s/api/v4/projects/%s/repository/tags/%s", &c.baseURL, c.project, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, "GET", route, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create a request: %w", err)
	}

	var tag Tag
	var r *http.Response
	if r, err = parseResponse(&c, req, &tag); err != nil {
		return nil, nil, err
	}

	return &tag, r, nil
}

// Pipeline represents one project pipeline.
type Pipeline struct {
	ID        int       `json:"id"`
	Ref       string    `json:"ref"`
	SHA       string    `json:"sha"`
	Status    string    `json:"status"`
	WebURL    string    `json:"web_url"`
	CreatedAt time.Time `json:"created_at"`
}

// pipelineVariable is one key/value pair passed to a created pipeline.
type pipelineVariable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// createPipelineRequest is the body of a pipeline creation request.
type createPipelineRequest struct {
	Ref       string             `json:"ref"`
	Variables []pipelineVariable `json:"variables,omitempty"`
}

// CreatePipeline creates a new pipeline on the given ref (a branch or tag
// name) with the provided pipeline variables.
func (c Client) CreatePipeline(ctx context.Context, ref string, variables map[string]string) (*Pipeline, *http.Response, error) {
	if ref == "" {
		return nil, nil, fmt.Errorf("'ref' option is required for a pipeline creation request")
	}

	body := createPipelineRequest{Ref: ref}
	for key, value := range variables {
		body.Variables = append(body.Variables, pipelineVariable{Key: key, Value: value})
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to encode the request body: %w", err)
	}

	route := fmt.Sprintf("%s/api/v4/projects/%s/pipeline", &c.baseURL, c.project)
	req, err := http.NewRequestWithContext(ctx, "POST", route, bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create a request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var p Pipeline
	var r *http.Response
	if r, err = parseResponse(&c, req, &p); err != nil {
		return nil, nil, err
	}

	return &p, r, nil
}

// Pipeline fetches one pipeline by id.
func (c Client) Pipeline(ctx context.Context, id int) (*Pipeline, *http.Response, error) {
	route := fmt.Sprintf("%s/api/v4/projects/%s/pipelines/%d", &c.baseURL, c.project, id)
	req, err := http.NewRequestWithContext(ctx, "GET", route, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create a request: %w", err)
	}

	var p Pipeline
	var r *http.Response
	if r, err = parseResponse(&c, req, &p); err != nil {
		return nil, nil, err
	}

	return &p, r, nil
}

// ListPipelinesOptions specifies the optional parameters to ListPipelines() method.
type ListPipelinesOptions struct {
	// For filtering pipelines by branch or tag name.
	Ref string `url:"ref,omitempty"`
	// For filtering pipelines by status (e.g. 'running', 'success').
	Status string `url:"status,omitempty"`
	// PerPage is used to define the pagination step.
	PerPage int `url:"per_page,omitempty"`
	// Page is used to define page.
	Page int `url:"page,omitempty"`
}

// ListPipelines lists project pipelines, most recent first.
func (c Client) ListPipelines(ctx context.Context, opts *ListPipelinesOptions) ([]Pipeline, *http.Response, error) {
	v, err := query.Values(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing the options: %w", err)
	}

	route := fmt.Sprintf("%s/api/v4/projects/%s/pipelines?%s", &c.baseURL, c.project, v.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", route, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create a request: %w", err)
	}

	var pl []Pipeline
	var r *http.Response
	if r, err = parseResponse(&c, req, &pl); err != nil {
		return nil, nil, err
	}

	return pl, r, nil
}

// errorResponse represents gitlab error response
type errorResponse struct {
	Message json.RawMessage `json:"message"`
	Error   string          `json:"error"`
}

// parseResponse is used to execute the request and unmarshall the response to dt
func parseResponse(c *Client, req *http.Request, dt interface{}) (r *http.Response, err error) {
	if c.token != "" {
		req.Header.Set("PRIVATE-TOKEN", c.token)
	}

	if r, err = c.HttpClient.Do(req); err != nil {
		return nil, fmt.Errorf("unable to send a request: %w", err)
	}
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}

	if r.StatusCode >= 400 {
		// Handling error responses from gitlab api, the message shape varies
		// between endpoints.
		var ersp errorResponse
		if perr := json.Unmarshal(body, &ersp); perr == nil {
			if ersp.Error != "" {
				return nil, fmt.Errorf("gitlab api responded with error '%s'", ersp.Error)
			}
			if len(ersp.Message) != 0 {
				return nil, fmt.Errorf("gitlab api responded with error '%s'", string(ersp.Message))
			}
		}
		return nil, fmt.Errorf("gitlab responded with HTTP error '%d: %s'", r.StatusCode, http.StatusText(r.StatusCode))
	}

	if err = json.Unmarshal(body, &dt); err != nil {
		return nil, fmt.Errorf("unable to parse response: %w", err)
	}

	return r, nil
}
