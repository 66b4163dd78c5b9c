//go:build viewquerydebug

package query

// debugAsserts enables invariant checking in development builds.
const debugAsserts = true
