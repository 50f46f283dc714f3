//go:build !linux

package strategy

func isTracked(_ Transmitter) bool {
	return false
}
