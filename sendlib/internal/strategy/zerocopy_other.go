//go:build !linux

package strategy

func newZeroCopyStrategy(_ Logger, _ ZeroCopyOptions) (Strategy, error) {
	return nil, ErrUnsupported
}
