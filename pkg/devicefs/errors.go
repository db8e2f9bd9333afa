package devicefs

import "errors"

// ErrLocked is returned by AcquireLock when another token is already held.
var ErrLocked = errors.New("devicefs: control directory already locked")
