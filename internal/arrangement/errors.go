package arrangement

import "errors"

var (
	ErrUnknownGenre = errors.New("unknown genre")
)
