//go:build !linux && !darwin

package logger

// No colour outside linux and darwin.
func isTerminal(uintptr) bool {
	return false
}
