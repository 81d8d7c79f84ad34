package secondary

import "errors"

// ErrNotFound is wrapped by repositories when a row does not exist.
// Messages read "<entity> <id> not found".
var ErrNotFound = errors.New("not found")

// ErrDuplicate is wrapped by repositories when a unique constraint rejects a write.
var ErrDuplicate = errors.New("already exists")
