// Package scm talks to the GitHub REST API v3 on behalf of a developer's
// stored OAuth token. Release metadata fetched here feeds the catalog's
// release import pipeline.
package scm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultAPIURL = "https://api.github.com"

// Client is a minimal GitHub REST client. Each call makes a single attempt;
// retrying is left to the caller since imports are user-initiated.
type Client struct {
	apiURL     string
	token      string
	httpClient *http.Client
}

// NewClient creates a client authenticated with the given OAuth token.
// apiURL may be empty to use the public GitHub API.
func NewClient(apiURL, token string) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		apiURL:     apiURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("github: create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return NewAPIError(0, "github request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrBadCredentials
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return ErrRateLimited
	case resp.StatusCode == http.StatusNotFound:
		return ErrRepositoryNotFound
	default:
		return NewAPIError(resp.StatusCode, "unexpected github response", nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("github: decode response: %w", err)
	}
	return nil
}

// FetchRepository gets metadata for a single repository.
func (c *Client) FetchRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s", c.apiURL, url.PathEscape(owner), url.PathEscape(repo))
	var r Repository
	if err := c.get(ctx, endpoint, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// FetchRelease gets the release with the given tag, or the latest release
// when tag is empty. A 404 from either release endpoint means the repository
// exists but the release does not, so it maps to ErrReleaseNotFound.
func (c *Client) FetchRelease(ctx context.Context, owner, repo, tag string) (*Release, error) {
	var endpoint string
	if tag == "" {
		endpoint = fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.apiURL, url.PathEscape(owner), url.PathEscape(repo))
	} else {
		endpoint = fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.apiURL, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(tag))
	}

	var rel Release
	if err := c.get(ctx, endpoint, &rel); err != nil {
		if err == ErrRepositoryNotFound {
			// The repo path resolved far enough to hit the releases API.
			return nil, ErrReleaseNotFound
		}
		return nil, err
	}
	return &rel, nil
}

// ListReleases lists releases in the repository, newest first.
func (c *Client) ListReleases(ctx context.Context, owner, repo string, page, perPage int) ([]Release, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 30
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases?page=%d&per_page=%d",
		c.apiURL, url.PathEscape(owner), url.PathEscape(repo), page, perPage)

	var releases []Release
	if err := c.get(ctx, endpoint, &releases); err != nil {
		return nil, err
	}
	return releases, nil
}

// ListUserRepositories lists repositories the token's owner can access,
// most recently updated first.
func (c *Client) ListUserRepositories(ctx context.Context, page, perPage int) ([]Repository, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 30
	}
	endpoint := fmt.Sprintf("%s/user/repos?page=%d&per_page=%d&sort=updated&affiliation=owner,collaborator",
		c.apiURL, page, perPage)

	var repos []Repository
	if err := c.get(ctx, endpoint, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// FetchAuthenticatedUser gets the profile of the token's owner.
func (c *Client) FetchAuthenticatedUser(ctx context.Context) (*AuthenticatedUser, error) {
	var u AuthenticatedUser
	if err := c.get(ctx, c.apiURL+"/user", &u); err != nil {
		return nil, err
	}
	return &u, nil
}
