package query

import "errors"

var ErrAccessConflict = errors.New("query access conflict")
