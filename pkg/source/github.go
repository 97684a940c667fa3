// Package source reads installer scripts from a GitHub repository.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/buildkite/interpolate"
	"github.com/google/go-github/v60/github"
	"github.com/pkg/errors"
	"github.com/pve-planner/pvescrape/pkg/httpclient"
)

const (
	DefaultOwner  = "community-scripts"
	DefaultRepo   = "ProxmoxVE"
	DefaultBranch = "main"

	// DefaultRawURLTemplate is expanded with OWNER, REPO, BRANCH and PATH.
	DefaultRawURLTemplate = "https://github.com/${OWNER}/${REPO}/raw/${BRANCH}/${PATH}"

	DefaultListTimeout  = 6 * time.Second
	DefaultFetchTimeout = 3 * time.Second
)

// FetchError is returned when a listing or raw content request does not succeed.
type FetchError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Options configures a GitHub source. Zero values fall back to the defaults above.
type Options struct {
	Owner          string
	Repo           string
	Branch         string
	APIURL         string // GitHub REST base URL, empty for api.github.com
	RawURLTemplate string
	ListTimeout    time.Duration
	FetchTimeout   time.Duration
}

func (o *Options) setDefaults() {
	if o.Owner == "" {
		o.Owner = DefaultOwner
	}
	if o.Repo == "" {
		o.Repo = DefaultRepo
	}
	if o.Branch == "" {
		o.Branch = DefaultBranch
	}
	if o.RawURLTemplate == "" {
		o.RawURLTemplate = DefaultRawURLTemplate
	}
	if o.ListTimeout <= 0 {
		o.ListTimeout = DefaultListTimeout
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
}

// GitHub lists and downloads scripts anonymously.
type GitHub struct {
	opts   Options
	client *github.Client
	http   *http.Client
}

// NewGitHub creates a GitHub source.
func NewGitHub(opts Options) (*GitHub, error) {
	opts.setDefaults()

	httpClient := httpclient.NewGitHubClient(0)
	client := github.NewClient(httpClient)
	client.UserAgent = httpclient.DefaultUserAgent
	if opts.APIURL != "" {
		base := opts.APIURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid GitHub API URL: %s", opts.APIURL)
		}
		client.BaseURL = u
	}

	return &GitHub{opts: opts, client: client, http: httpClient}, nil
}

// ListScripts returns the names of the .sh files directly inside dir,
// in the order the contents API returns them.
func (g *GitHub) ListScripts(ctx context.Context, dir string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.opts.ListTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%srepos/%s/%s/contents/%s", g.client.BaseURL, g.opts.Owner, g.opts.Repo, dir)
	log.Debugf("Listing %s", endpoint)

	file, items, resp, err := g.client.Repositories.GetContents(ctx, g.opts.Owner, g.opts.Repo, dir,
		&github.RepositoryContentGetOptions{Ref: g.opts.Branch})
	if err != nil {
		fetchErr := &FetchError{URL: endpoint, Err: err}
		if resp != nil {
			fetchErr.StatusCode = resp.StatusCode
		}
		return nil, fetchErr
	}
	if file != nil {
		return nil, &FetchError{URL: endpoint, Err: errors.Errorf("%s is a file, not a directory", dir)}
	}

	var names []string
	for _, item := range items {
		if item.GetType() == "file" && path.Ext(item.GetName()) == ".sh" {
			names = append(names, item.GetName())
		}
	}
	log.Debugf("Found %d scripts of %d entries in %s", len(names), len(items), dir)
	return names, nil
}

// RawURL returns the raw content URL for a repository-relative path.
func (g *GitHub) RawURL(repoPath string) (string, error) {
	env := interpolate.NewMapEnv(map[string]string{
		"OWNER":  g.opts.Owner,
		"REPO":   g.opts.Repo,
		"BRANCH": g.opts.Branch,
		"PATH":   strings.TrimPrefix(repoPath, "/"),
	})
	u, err := interpolate.Interpolate(env, g.opts.RawURLTemplate)
	if err != nil {
		return "", errors.Wrapf(err, "failed to expand raw URL template %q", g.opts.RawURLTemplate)
	}
	return u, nil
}

// FetchRaw returns the content of a file relative to the repository root, e.g. "vm/debian-vm.sh".
func (g *GitHub) FetchRaw(ctx context.Context, repoPath string) (string, error) {
	rawURL, err := g.RawURL(repoPath)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.opts.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}

	log.Debugf("Fetching %s", rawURL)
	resp, err := g.http.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: errors.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	return string(body), nil
}
