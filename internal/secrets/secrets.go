// internal/secrets/secrets.go

package secrets

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// LatestVersion addresses the most recently created version of a secret.
const LatestVersion = "latest"

var (
	ErrNotFound         = errors.New("secret not found")
	ErrPermissionDenied = errors.New("permission denied accessing secret")
	ErrInvalidPayload   = errors.New("secret payload is not valid UTF-8")
)

// Accessor retrieves the latest version of a named secret from a backend.
type Accessor interface {
	AccessLatest(ctx context.Context, secret string) (*Payload, error)
	Close() error
}

// Payload is the raw result of a single access call.
type Payload struct {
	// Name is the fully-qualified reference that was accessed.
	Name string
	Data []byte
}

// Text decodes the payload as UTF-8.
func (p *Payload) Text() (string, error) {
	if !utf8.Valid(p.Data) {
		return "", errors.Wrapf(ErrInvalidPayload, "%s", p.Name)
	}
	return string(p.Data), nil
}

// ResourceName builds projects/{project}/secrets/{secret}/versions/{version}.
func ResourceName(project, secret, version string) string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/%s", project, secret, version)
}

// classify marks err with sentinel so callers can match it with errors.Is
// while the backend error stays in the chain.
func classify(err error, sentinel error, format string, args ...interface{}) error {
	wrapped := errors.Wrapf(err, format, args...)
	if sentinel == nil {
		return wrapped
	}
	return errors.Mark(wrapped, sentinel)
}
