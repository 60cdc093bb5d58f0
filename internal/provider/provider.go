// Package provider abstracts the release sources updatewatch can track.
//
// A provider answers exactly one question: what is the latest published
// version string for a given program? GitHub releases are the only
// implementation today; adding another source means implementing Provider and
// registering a new detail kind, with no changes to the check engine.
package provider

import (
	"context"
	"errors"

	"github.com/blackwell-systems/updatewatch/internal/version"
)

// Sentinel errors for provider failures. All of them are per-program and
// non-fatal to a check pass.
var (
	// ErrRateLimited is returned when the release source throttled the request.
	ErrRateLimited = errors.New("provider rate limit exceeded")

	// ErrNotFound is returned when the repository does not exist or has no
	// published releases.
	ErrNotFound = errors.New("no release found")
)

// Provider fetches the latest published version for a repository.
type Provider interface {
	// LatestVersion returns the newest release version string for the
	// repository identifier (for GitHub, "owner/repo"). The context bounds
	// the network call.
	LatestVersion(ctx context.Context, repository string) (version.Version, error)
}
