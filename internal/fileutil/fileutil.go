package fileutil

import (
	"io"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// RemoveAllRetry deletes path and everything under it, retrying with
// exponential backoff up to maxRetries additional attempts. Concurrent
// readers can hold transient locks on freshly written archives on some
// platforms, so a failed attempt is not immediately fatal. The last error is
// returned after the retry budget is exhausted.
func RemoveAllRetry(path string, maxRetries int) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	policy.MaxElapsedTime = 0

	return backoff.Retry(func() error {
		return os.RemoveAll(path)
	}, backoff.WithMaxRetries(policy, uint64(maxRetries)))
}
