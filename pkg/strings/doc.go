// Package strings holds text helpers shared by error messages and terminal
// output.
package strings
