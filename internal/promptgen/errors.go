package promptgen

import "errors"

var (
	ErrUniformNotFound = errors.New("uniform type not found")
	ErrEmptyCatalog    = errors.New("catalog has no uniform types")
)
