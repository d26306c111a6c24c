package repository

import "errors"

// ErrDuplicateNumber is returned when an invoice number is already taken
var ErrDuplicateNumber = errors.New("invoice number already in use")
