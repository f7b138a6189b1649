package services

import "errors"

// ErrInvalidWindow возвращается, если промоакция заканчивается не позже начала.
var ErrInvalidWindow = errors.New("promotion must end after it starts")
