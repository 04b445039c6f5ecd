package common

import "errors"

// ErrorInvalidCode is returned for strings that are not a message code or share link.
var ErrorInvalidCode = errors.New("invalid message code")
