package repository

import "errors"

// ErrMalformedRecord marks a catalog or log record that does not decode.
var ErrMalformedRecord = errors.New("malformed record")
