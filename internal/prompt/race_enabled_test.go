//go:build race

package prompt

// raceEnabled reports whether the test binary runs with the race detector.
const raceEnabled = true
