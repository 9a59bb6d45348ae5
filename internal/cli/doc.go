// Package cli renders command output for telltales.
//
// Resource listings are printed in one of several formats: a kubectl-style
// plain table (the default), a boxed table, JSON or YAML. The credential
// status view colours each field by whether it is present. Error helpers
// classify transport failures into short, actionable hints for the operator.
package cli
