package dataset

import "errors"

var (
	ErrEmptyInput       = errors.New("no tokens to pack")
	ErrInvalidBlockSize = errors.New("block size must be positive")
	ErrInvalidSplit     = errors.New("invalid train/test split")
)
