package value

import "errors"

// Unknown signals that an expression has no single compile-time value
// here. It is a control-flow marker, not a failure: evaluation chains
// propagate it with ordinary error returns and callers that need a
// definite value convert it into a type error at the point where one
// was mandatory.
type Unknown struct {
	Reason string
	Src    string // rendered source of the originating node, may be empty
}

func (u *Unknown) Error() string {
	if u.Src != "" {
		return "value of " + u.Src + " not known: " + u.Reason
	}
	return "value not known: " + u.Reason
}

// Unknownf builds an Unknown for the given source rendering.
func Unknownf(src, reason string) *Unknown {
	return &Unknown{Reason: reason, Src: src}
}

// IsUnknown reports whether err is (or wraps) the value-unknown signal.
func IsUnknown(err error) bool {
	var u *Unknown
	return errors.As(err, &u)
}

// AsUnknown extracts the Unknown from err, if present.
func AsUnknown(err error) (*Unknown, bool) {
	var u *Unknown
	ok := errors.As(err, &u)
	return u, ok
}
