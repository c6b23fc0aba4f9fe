package apperr

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrFormat              = errors.New("malformed content document")
	ErrDecode              = errors.New("image decode failed")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrUnknownSection      = errors.New("unknown section")
	ErrInvalidFilename     = errors.New("invalid filename")
)
