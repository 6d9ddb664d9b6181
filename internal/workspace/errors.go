package workspace

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/RevCBH/hodor/internal/git"
)

// CloneFailedError reports a clone, fetch or checkout failure.
type CloneFailedError struct {
	Op  string
	Err error
}

func (e *CloneFailedError) Error() string {
	return fmt.Sprintf("workspace %s failed: %v", e.Op, e.Err)
}

func (e *CloneFailedError) Unwrap() error {
	return e.Err
}

// RefNotFoundError reports a ref the remote does not have.
type RefNotFoundError struct {
	Ref string
	Err error
}

func (e *RefNotFoundError) Error() string {
	return fmt.Sprintf("ref %s not found: %v", e.Ref, e.Err)
}

func (e *RefNotFoundError) Unwrap() error {
	return e.Err
}

// redactedError hides credentials in the message of the wrapped error.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// hasCredentials reports whether a remote URL embeds userinfo.
func hasCredentials(url string) bool {
	return userinfoPattern.MatchString(url)
}

var userinfoPattern = regexp.MustCompile(`(https?://)[^/@\s]+@`)

func redact(err error, secrets ...string) error {
	if err == nil {
		return nil
	}
	msg := userinfoPattern.ReplaceAllString(err.Error(), "${1}***@")
	for _, secret := range secrets {
		if secret != "" {
			msg = strings.ReplaceAll(msg, secret, "***")
		}
	}
	return &redactedError{msg: msg, err: err}
}

func isMissingRef(err error) bool {
	var cmdErr *git.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	stderr := strings.ToLower(cmdErr.Stderr)
	return strings.Contains(stderr, "couldn't find remote ref") ||
		strings.Contains(stderr, "not our ref")
}

// fetchError classifies a failed fetch of ref.
func fetchError(ref string, err error, secrets ...string) error {
	if isMissingRef(err) {
		return &RefNotFoundError{Ref: ref, Err: redact(err, secrets...)}
	}
	return &CloneFailedError{Op: "fetch", Err: redact(err, secrets...)}
}
