package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")
var ErrorInsufficientBalance = errors.New("insufficient balance")
var ErrorInvalidTransition = errors.New("invalid status transition")
