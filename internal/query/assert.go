package query

import "fmt"

// devAssert panics with a descriptive message when cond is false, but only in
// builds compiled with the "viewquerydebug" tag. In release builds the
// constant guard lets the compiler drop the check entirely, preserving the
// "checked in development, elided in production" contract: violations are
// caller contract breaches, not recoverable failures.
func devAssert(cond bool, format string, args ...any) {
	if debugAsserts && !cond {
		panic("viewquery: " + fmt.Sprintf(format, args...))
	}
}
