//go:build !viewquerydebug

package query

// debugAsserts disables invariant checking outside development builds.
const debugAsserts = false
