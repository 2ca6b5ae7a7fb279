// Package module defines the package Reference type along with support code.
package module

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// DefaultUser and DefaultChannel fill a reference written without
// the "@user/channel" suffix.
const (
	DefaultUser    = "_"
	DefaultChannel = "_"
)

var (
	// ErrMalformedReference is returned for references that do not follow
	// the "name/version@user/channel" form.
	ErrMalformedReference = errors.New("malformed reference")

	// ErrMalformedVersion is returned for empty or unparsable versions.
	ErrMalformedVersion = errors.New("malformed version")
)

var identRE = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_+.-]*$`)

// A Reference identifies one pinned package: its name, exact version and
// the user/channel release track it was published on.
type Reference struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
	User    string `yaml:"user" json:"user"`
	Channel string `yaml:"channel" json:"channel"`
}

// ParseReference parses s in the form "name/version@user/channel".
// The "@user/channel" part is optional.
func ParseReference(s string) (Reference, error) {
	nameVer, userChan, hasTrack := strings.Cut(s, "@")
	name, version, ok := strings.Cut(nameVer, "/")
	if !ok {
		return Reference{}, fmt.Errorf("%w: %q: missing version", ErrMalformedReference, s)
	}
	ref := Reference{
		Name:    name,
		Version: version,
		User:    DefaultUser,
		Channel: DefaultChannel,
	}
	if hasTrack {
		user, channel, ok := strings.Cut(userChan, "/")
		if !ok {
			return Reference{}, fmt.Errorf("%w: %q: missing channel", ErrMalformedReference, s)
		}
		ref.User, ref.Channel = user, channel
	}
	if err := ref.Check(); err != nil {
		return Reference{}, err
	}
	return ref, nil
}

// Check reports whether every field of r is well formed.
func (r Reference) Check() error {
	for _, f := range []struct{ field, val string }{
		{"name", r.Name},
		{"user", r.User},
		{"channel", r.Channel},
	} {
		if !identRE.MatchString(f.val) {
			return fmt.Errorf("%w: invalid %s %q", ErrMalformedReference, f.field, f.val)
		}
	}
	return CheckVersion(r.Version)
}

// String returns r in its canonical "name/version@user/channel" form.
func (r Reference) String() string {
	return r.Name + "/" + r.Version + "@" + r.User + "/" + r.Channel
}

// CheckVersion validates a version string. An optional leading "v" is
// accepted; the rest must be a semantic version, shorthands included
// ("5.11" is valid, "1..2" is not).
func CheckVersion(v string) error {
	if v == "" {
		return fmt.Errorf("%w: empty version", ErrMalformedVersion)
	}
	if !semver.IsValid(canonical(v)) {
		return fmt.Errorf("%w: %q", ErrMalformedVersion, v)
	}
	return nil
}

// CompareVersion compares two versions accepted by CheckVersion and returns
// -1, 0 or +1. Invalid versions sort before valid ones.
func CompareVersion(v1, v2 string) int {
	return semver.Compare(canonical(v1), canonical(v2))
}

func canonical(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// EscapePath returns the relative file system path under which r is laid
// out: name/version/user/channel. It fails if r is malformed.
func EscapePath(r Reference) (escaped string, err error) {
	if err := r.Check(); err != nil {
		return "", err
	}
	return filepath.Localize(r.Name + "/" + r.Version + "/" + r.User + "/" + r.Channel)
}
