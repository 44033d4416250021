// Package transport moves signed payloads across the repository-hosting
// boundary. The hosting service is used purely as a dumb content-addressed
// store: a blob in a single-file tree under a parentless commit, addressed by
// a namespaced ref.
package transport

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/pulsegate/signal-service/internal/service"
)

// BlobFilename is the single fixed filename inside every published tree.
const BlobFilename = "signal.json"

// RefTokenBackend publishes signed payloads to the target's ref via the
// Git Data API. Each publish wholly replaces the prior state: commits carry
// no parents, so the ref never accumulates history and never needs merging.
type RefTokenBackend struct {
	Timeout time.Duration
	// BaseURL overrides the API endpoint (tests, GitHub Enterprise).
	BaseURL string
}

func (b RefTokenBackend) client(ctx context.Context, credential string) (*github.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential})
	c := github.NewClient(oauth2.NewClient(ctx, ts))
	if b.BaseURL != "" {
		var err error
		c, err = c.WithEnterpriseURLs(b.BaseURL, b.BaseURL)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (b RefTokenBackend) Publish(ctx context.Context, t service.TargetRecord, payload []byte, _ bool) error {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	gh, err := b.client(ctx, t.Credential)
	if err != nil {
		return err
	}

	blob, _, err := gh.Git.CreateBlob(ctx, t.Owner, t.Repo, &github.Blob{
		Content:  github.String(base64.StdEncoding.EncodeToString(payload)),
		Encoding: github.String("base64"),
	})
	if err != nil {
		return fmt.Errorf("create blob: %w", err)
	}

	tree, _, err := gh.Git.CreateTree(ctx, t.Owner, t.Repo, "", []*github.TreeEntry{{
		Path: github.String(BlobFilename),
		Mode: github.String("100644"),
		Type: github.String("blob"),
		SHA:  blob.SHA,
	}})
	if err != nil {
		return fmt.Errorf("create tree: %w", err)
	}

	// Parentless on purpose: the payload is state, not history.
	commit, _, err := gh.Git.CreateCommit(ctx, t.Owner, t.Repo, &github.Commit{
		Message: github.String("signal update"),
		Tree:    tree,
	}, nil)
	if err != nil {
		return fmt.Errorf("create commit: %w", err)
	}

	ref := &github.Reference{
		Ref:    github.String(t.RefName),
		Object: &github.GitObject{SHA: commit.SHA},
	}
	if _, resp, err := gh.Git.UpdateRef(ctx, t.Owner, t.Repo, ref, true); err != nil {
		// First publish: the ref does not exist yet.
		if resp != nil && (resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusNotFound) {
			if _, _, cerr := gh.Git.CreateRef(ctx, t.Owner, t.Repo, ref); cerr != nil {
				return fmt.Errorf("create ref %s: %w", t.RefName, cerr)
			}
			return nil
		}
		return fmt.Errorf("update ref %s: %w", t.RefName, err)
	}
	return nil
}

// PolicyLockBackend is the alternate enforcement strategy: instead of signed
// tokens it locks the repository's default branch while the decision is deny.
// Different trust boundary, same Publisher port.
type PolicyLockBackend struct {
	Timeout time.Duration
	BaseURL string
}

func (b PolicyLockBackend) Publish(ctx context.Context, t service.TargetRecord, _ []byte, decision bool) error {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	gh, err := RefTokenBackend{BaseURL: b.BaseURL}.client(ctx, t.Credential)
	if err != nil {
		return err
	}
	repo, _, err := gh.Repositories.Get(ctx, t.Owner, t.Repo)
	if err != nil {
		return fmt.Errorf("get repo: %w", err)
	}
	branch := repo.GetDefaultBranch()
	if branch == "" {
		branch = "main"
	}
	_, _, err = gh.Repositories.UpdateBranchProtection(ctx, t.Owner, t.Repo, branch, &github.ProtectionRequest{
		LockBranch: github.Bool(!decision),
	})
	if err != nil {
		return fmt.Errorf("lock branch %s: %w", branch, err)
	}
	return nil
}

// ShortRef strips the "refs/" prefix where an API wants the bare ref.
func ShortRef(ref string) string {
	return strings.TrimPrefix(ref, "refs/")
}
