package photos

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("photo not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidSection   = fmt.Errorf("%w: section must be one of kitchen, bathroom, livingRoom, bedroom, exterior", ErrInvalidInput)
	ErrPropertyNotFound = errors.New("property not found")
	ErrUpstream         = errors.New("storage provider error")
	ErrPersistence      = errors.New("photo persistence failed")
)
