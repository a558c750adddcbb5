package midi

import "errors"

var ErrExport = errors.New("midi export failed")
