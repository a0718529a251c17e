package scm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newStubServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-token")
}

func TestFetchRepository_Success(t *testing.T) {
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octocat/hello" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 1,
			"name": "hello",
			"full_name": "octocat/hello",
			"description": "demo repository",
			"owner": {"login": "octocat"}
		}`))
	})

	repo, err := client.FetchRepository(context.Background(), "octocat", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.FullName != "octocat/hello" || repo.Owner.Login != "octocat" {
		t.Errorf("repo = %+v", repo)
	}
}

func TestFetchRepository_NotFound(t *testing.T) {
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchRepository(context.Background(), "octocat", "ghost")
	if !errors.Is(err, ErrRepositoryNotFound) {
		t.Fatalf("error = %v, want ErrRepositoryNotFound", err)
	}
}

func TestFetchRepository_BadCredentials(t *testing.T) {
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchRepository(context.Background(), "octocat", "hello")
	if !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("error = %v, want ErrBadCredentials", err)
	}
}

func TestFetchRepository_RateLimited(t *testing.T) {
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.FetchRepository(context.Background(), "octocat", "hello")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}
}

func TestFetchRelease_ByTag(t *testing.T) {
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octocat/hello/releases/tags/v1.2.0" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"id": 9,
			"tag_name": "v1.2.0",
			"name": "Release 1.2.0",
			"assets": [
				{"name": "hello-windows-amd64.exe", "size": 1024, "browser_download_url": "https://example.com/win"}
			]
		}`))
	})

	release, err := client.FetchRelease(context.Background(), "octocat", "hello", "v1.2.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if release.TagName != "v1.2.0" || len(release.Assets) != 1 {
		t.Errorf("release = %+v", release)
	}
}

func TestFetchRelease_EmptyTagMeansLatest(t *testing.T) {
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octocat/hello/releases/latest" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id": 10, "tag_name": "v2.0.0"}`))
	})

	release, err := client.FetchRelease(context.Background(), "octocat", "hello", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if release.TagName != "v2.0.0" {
		t.Errorf("tag = %q, want v2.0.0", release.TagName)
	}
}

func TestFetchRelease_MissingTagIsReleaseNotFound(t *testing.T) {
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchRelease(context.Background(), "octocat", "hello", "v9.9.9")
	if !errors.Is(err, ErrReleaseNotFound) {
		t.Fatalf("error = %v, want ErrReleaseNotFound", err)
	}
}

func TestListReleases_PaginationDefaults(t *testing.T) {
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "1" || q.Get("per_page") != "30" {
			t.Errorf("query = %v, want defaults applied", q)
		}
		_, _ = w.Write([]byte(`[{"id": 1, "tag_name": "v1.0.0"}, {"id": 2, "tag_name": "v0.9.0"}]`))
	})

	releases, err := client.ListReleases(context.Background(), "octocat", "hello", 0, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(releases) != 2 {
		t.Errorf("len = %d, want 2", len(releases))
	}
}

func TestFetchAuthenticatedUser(t *testing.T) {
	client := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id": 12345, "login": "octocat", "email": "octo@example.com"}`))
	})

	user, err := client.FetchAuthenticatedUser(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 12345 || user.Login != "octocat" {
		t.Errorf("user = %+v", user)
	}
}
