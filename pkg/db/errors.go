package db

import "errors"

// requested record does not exist.
var ErrMissing = errors.New("missing")

// a record with the same identity already exists.
var ErrAlreadyExists = errors.New("already exists")

// the frame is closed and does not accept mutation anymore.
var ErrFrameClosed = errors.New("frame is closed")

// the frame has no attachments, so it cannot be closed.
var ErrFrameEmpty = errors.New("frame is empty")
