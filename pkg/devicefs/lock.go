package devicefs

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// LockFile is the name of the advisory lock token written under the
// control directory. It is advisory only: nothing in the package enforces
// it against the real filesystem, matching spec §5's description of the
// core as "single-threaded, non-reentrant" rather than concurrency-safe.
const LockFile = ".gpoddb.lock"

// Lock represents exclusive access claimed over a device's control
// directory, identified by a random token (spec §5 shared-resource
// policy: callers are expected to serialize access to a mounted device
// themselves; this is the mechanism they serialize with).
type Lock struct {
	fs    FileStore
	path  string
	Token string
}

// AcquireLock writes a lock token file under dir if one does not already
// exist, and returns a Lock wrapping it. ErrLocked is returned if another
// token is already present.
func AcquireLock(fs FileStore, dir string) (*Lock, error) {
	path := dir + "/" + LockFile
	if existing, err := fs.ReadFile(path); err == nil {
		return nil, fmt.Errorf("%w: held by %s", ErrLocked, strings.TrimSpace(string(existing)))
	}
	token := uuid.New().String()
	if err := fs.WriteFile(path, []byte(token)); err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	return &Lock{fs: fs, path: path, Token: token}, nil
}

// Release removes the lock token, provided it still matches the token
// this Lock was created with.
func (l *Lock) Release() error {
	current, err := l.fs.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("release lock: %w", err)
	}
	if strings.TrimSpace(string(current)) != l.Token {
		return fmt.Errorf("release lock: token mismatch, not held by us")
	}
	return l.fs.Remove(l.path)
}
