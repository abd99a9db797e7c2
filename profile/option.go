//go:build pprof

package profile

// option adds one setting to a session's pkg/profile options.
type option func(control) control

// apply applies multiple options to a control.
func apply(c control, opts ...option) control {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}
