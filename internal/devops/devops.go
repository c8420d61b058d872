// Package devops downloads the files changed by an Azure DevOps pull request.
package devops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/aieval/internal/contract"
	log "github.com/sirupsen/logrus"
	"gopkg.in/resty.v1"
)

// Defaults for the Azure DevOps REST API.
const (
	DefaultBaseURL = "https://dev.azure.com"
	apiVersion     = "7.1"
	firstIteration = 1
	requestTimeout = 60 * time.Second
)

// PullRequest identifies a pull request in an Azure DevOps organization.
type PullRequest struct {
	Organization string
	Project      string
	Repository   string
	ID           int
}

// ParsePullRequestURL extracts the pull request coordinates from a browser URL.
// Both https://dev.azure.com/{org}/{project}/_git/{repo}/pullrequest/{id} and
// https://{org}.visualstudio.com/{project}/_git/{repo}/pullrequest/{id} are accepted.
func ParsePullRequestURL(raw string) (PullRequest, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return PullRequest{}, fmt.Errorf("invalid pull request URL: %w", err)
	}
	if u.Host == "" {
		return PullRequest{}, fmt.Errorf("invalid pull request URL %q: missing host", raw)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	host := strings.ToLower(u.Hostname())

	var org string
	switch {
	case host == "dev.azure.com":
		if len(parts) == 0 || parts[0] == "" {
			return PullRequest{}, fmt.Errorf("invalid pull request URL %q: missing organization", raw)
		}
		org, parts = parts[0], parts[1:]
	case strings.HasSuffix(host, ".visualstudio.com"):
		org = strings.TrimSuffix(host, ".visualstudio.com")
	default:
		return PullRequest{}, fmt.Errorf("invalid pull request URL %q: not an Azure DevOps host", raw)
	}

	// {project}/_git/{repo}/pullrequest/{id}
	if len(parts) != 5 || parts[1] != "_git" || !strings.EqualFold(parts[3], "pullrequest") {
		return PullRequest{}, fmt.Errorf("invalid pull request URL %q: expected {project}/_git/{repo}/pullrequest/{id}", raw)
	}
	id, err := strconv.Atoi(parts[4])
	if err != nil || id <= 0 {
		return PullRequest{}, fmt.Errorf("invalid pull request id %q", parts[4])
	}

	project, _ := url.PathUnescape(parts[0])
	repo, _ := url.PathUnescape(parts[2])
	return PullRequest{Organization: org, Project: project, Repository: repo, ID: id}, nil
}

// Client talks to the Azure DevOps Git REST API with a personal access token.
type Client struct {
	baseURL string
	pat     string
	client  *resty.Client
}

var _ contract.ChangeDownloader = &Client{} // Compile-time check

// NewClient creates a Client. An empty baseURL means DefaultBaseURL.
func NewClient(pat, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.NewWithClient(&http.Client{Timeout: requestTimeout})
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), pat: pat, client: client}
}

// Download parses prURL and writes the added and edited files below destDir.
func (c *Client) Download(ctx context.Context, prURL string, destDir string) ([]string, error) {
	pr, err := ParsePullRequestURL(prURL)
	if err != nil {
		return nil, err
	}
	return c.DownloadChanges(ctx, pr, destDir)
}

// DownloadChanges writes every file added or edited by the first iteration of pr
// below destDir, keeping the repository layout. It returns the written relative paths.
func (c *Client) DownloadChanges(ctx context.Context, pr PullRequest, destDir string) ([]string, error) {
	if c.pat == "" {
		return nil, errors.New("a personal access token is required (--devops-pat or AZURE_DEVOPS_PAT)")
	}

	details, err := c.getPullRequest(ctx, pr)
	if err != nil {
		return nil, err
	}
	branch := strings.TrimPrefix(details.SourceRefName, "refs/heads/")

	changes, err := c.getIterationChanges(ctx, pr)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, change := range changes.ChangeEntries {
		if change.Item.IsFolder || !isAddOrEdit(change.ChangeType) {
			continue
		}
		rel, target, err := safeTarget(destDir, change.Item.Path)
		if err != nil {
			return written, err
		}

		content, err := c.getItemContent(ctx, pr, change.Item.Path, branch)
		if err != nil {
			return written, err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("cannot create folder for %s: %w", rel, err)
		}
		if err := os.WriteFile(target, content, 0o644); err != nil {
			return written, fmt.Errorf("cannot write %s: %w", rel, err)
		}
		log.WithField("path", rel).Debug("Downloaded pull request file")
		written = append(written, rel)
	}
	return written, nil
}

type pullRequestDetails struct {
	SourceRefName string `json:"sourceRefName"`
}

type changeEntry struct {
	ChangeType string `json:"changeType"`
	Item       struct {
		Path     string `json:"path"`
		IsFolder bool   `json:"isFolder"`
	} `json:"item"`
}

type iterationChanges struct {
	ChangeEntries []changeEntry `json:"changeEntries"`
}

func (c *Client) getPullRequest(ctx context.Context, pr PullRequest) (*pullRequestDetails, error) {
	resp, err := c.makeRequest(ctx).Get(c.repoURL(pr) + fmt.Sprintf("/pullrequests/%d", pr.ID))
	if err := checkResponse(resp, err, fmt.Sprintf("get pull request %d", pr.ID)); err != nil {
		return nil, err
	}
	var details pullRequestDetails
	if err := json.Unmarshal(resp.Body(), &details); err != nil {
		return nil, fmt.Errorf("failed to decode pull request %d: %w", pr.ID, err)
	}
	if details.SourceRefName == "" {
		return nil, fmt.Errorf("pull request %d has no source branch", pr.ID)
	}
	return &details, nil
}

func (c *Client) getIterationChanges(ctx context.Context, pr PullRequest) (*iterationChanges, error) {
	endpoint := c.repoURL(pr) + fmt.Sprintf("/pullRequests/%d/iterations/%d/changes", pr.ID, firstIteration)
	resp, err := c.makeRequest(ctx).Get(endpoint)
	if err := checkResponse(resp, err, fmt.Sprintf("get changes of pull request %d", pr.ID)); err != nil {
		return nil, err
	}
	var changes iterationChanges
	if err := json.Unmarshal(resp.Body(), &changes); err != nil {
		return nil, fmt.Errorf("failed to decode changes of pull request %d: %w", pr.ID, err)
	}
	return &changes, nil
}

func (c *Client) getItemContent(ctx context.Context, pr PullRequest, path, branch string) ([]byte, error) {
	resp, err := c.makeRequest(ctx).
		SetHeader("Accept", "application/octet-stream").
		SetQueryParams(map[string]string{
			"path":                          path,
			"versionDescriptor.version":     branch,
			"versionDescriptor.versionType": "branch",
			"download":                      "true",
		}).
		Get(c.repoURL(pr) + "/items")
	if err := checkResponse(resp, err, "get content of "+path); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// makeRequest prepares a request with basic auth (empty user, PAT password) and the API version.
func (c *Client) makeRequest(ctx context.Context) *resty.Request {
	req := c.client.R()
	req.SetContext(ctx)
	req.SetBasicAuth("", c.pat)
	req.SetQueryParam("api-version", apiVersion)
	return req
}

func (c *Client) repoURL(pr PullRequest) string {
	return fmt.Sprintf("%s/%s/%s/_apis/git/repositories/%s",
		c.baseURL, url.PathEscape(pr.Organization), url.PathEscape(pr.Project), url.PathEscape(pr.Repository))
}

func checkResponse(resp *resty.Response, err error, action string) error {
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("failed to %s: status code %d", action, resp.StatusCode())
	}
	return nil
}

// isAddOrEdit reports whether a change type such as "edit, rename" adds or edits content.
func isAddOrEdit(changeType string) bool {
	for part := range strings.SplitSeq(changeType, ",") {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "delete":
			return false
		case "add", "edit":
			return true
		}
	}
	return false
}

// safeTarget maps a repository item path below destDir and rejects paths that escape it.
func safeTarget(destDir, itemPath string) (string, string, error) {
	rel := strings.TrimLeft(itemPath, "/")
	target := filepath.Join(destDir, filepath.FromSlash(rel))
	check, err := filepath.Rel(destDir, target)
	if err != nil || rel == "" || check == "." || check == ".." || strings.HasPrefix(check, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("refusing to write %q outside of %s", itemPath, destDir)
	}
	return filepath.ToSlash(check), target, nil
}
