// Package version holds the version identity model used across updatewatch.
//
// Versions are opaque strings taken verbatim from a release provider (for
// GitHub, the tag name of the latest release). There is deliberately no
// semantic-version parsing and no ordering: "an update exists" means nothing
// more than "the provider now reports a different string than we have stored".
// A re-published release with a lexicographically older tag is therefore still
// reported as an update.
package version

// Version is an opaque version string as reported by a release provider.
type Version string

// String returns the raw version string.
func (v Version) String() string {
	return string(v)
}

// Equal reports whether two versions are the same string.
func (v Version) Equal(other Version) bool {
	return v == other
}

// Changed reports whether the fetched version differs from the stored one.
// This is the only notion of "newer" updatewatch has.
func Changed(stored, fetched Version) bool {
	return stored != fetched
}
