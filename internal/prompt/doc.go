// Package prompt reads operator input from the terminal.
//
// Reads are context-aware: when the context ends, the pending read is
// abandoned and the terminal is restored, so a caller racing the prompt
// against another input source never blocks on a line the operator has not
// typed yet.
package prompt
