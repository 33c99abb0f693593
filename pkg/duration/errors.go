package duration

import "errors"

// ErrProbe matches every failure returned by Service.Get.
var ErrProbe = errors.New("duration could not be determined")

// UnknownError is the message used when the backend records nothing.
const UnknownError = "unknown error"

// ProbeError describes a failed duration lookup.
type ProbeError struct {
	Backend string
	Path    string
	CallID  uint32
	Message string
}

func (e *ProbeError) Error() string {
	return e.Backend + ": " + e.Message
}

// Is reports whether target is ErrProbe.
func (e *ProbeError) Is(target error) bool {
	return target == ErrProbe
}
