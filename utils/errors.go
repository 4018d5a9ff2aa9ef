package utils

import "github.com/pkg/errors"

var (
	InvalidArgError = errors.New("InvalidArgError")
	NotFoundError   = errors.New("NotFoundError")
)

// Wrap a sentinel error with a message so callers can still test it
// with errors.Is()
func Wrap(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
