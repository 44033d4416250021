package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrRefMissing — the remote has no such ref: the authority never issued.
	ErrRefMissing = errors.New("ref_missing")
	// ErrUnreachable — the fetch itself failed (network, auth, missing remote).
	ErrUnreachable = errors.New("ref_unreachable")
)

// GitFetcher reads the payload blob through an ordinary git-remote fetch, so
// it rides whatever credentials the surrounding checkout already has. No API
// token ever enters the sandbox.
type GitFetcher struct {
	// Dir is the repository checkout to operate in; "." by default.
	Dir     string
	Timeout time.Duration
}

func (f GitFetcher) dir() string {
	if f.Dir == "" {
		return "."
	}
	return f.Dir
}

// Fetch pulls exactly the given ref (never the default branch) and returns
// the contents of the fixed payload file in its commit.
func (f GitFetcher) Fetch(ctx context.Context, remote, ref string) ([]byte, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stderr bytes.Buffer
	fetch := exec.CommandContext(ctx, "git", "-C", f.dir(), "fetch", "--quiet", "--depth", "1", remote, ref)
	fetch.Stderr = &stderr
	if err := fetch.Run(); err != nil {
		msg := stderr.String()
		if strings.Contains(msg, "couldn't find remote ref") {
			return nil, ErrRefMissing
		}
		return nil, fmt.Errorf("%w: git fetch %s %s: %v: %s", ErrUnreachable, remote, ref, err, strings.TrimSpace(msg))
	}

	stderr.Reset()
	show := exec.CommandContext(ctx, "git", "-C", f.dir(), "show", "FETCH_HEAD:"+BlobFilename)
	show.Stderr = &stderr
	out, err := show.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: git show: %v: %s", ErrUnreachable, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
