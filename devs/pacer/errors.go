package pacer

import "github.com/iscar-ucm/xdevs-go/devs"

// recoverFatal mirrors the engine's own panic/error boundary: a panic
// carrying a *devs.Error is captured into the named return, anything
// else is a genuine bug and must keep unwinding.
func recoverFatal(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if de, ok := r.(*devs.Error); ok {
		*errp = de
		return
	}
	panic(r)
}
