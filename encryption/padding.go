package encryption

import "errors"

var errInvalidPadding = errors.New("invalid padding")

// pad appends PKCS#7 padding so the result is block-aligned. A full
// extra block is added when the input is already aligned.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// unpad removes PKCS#7 padding, checking every padding byte.
func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errInvalidPadding
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, errInvalidPadding
	}

	for i := len(data) - n; i < len(data); i++ {
		if data[i] != byte(n) {
			return nil, errInvalidPadding
		}
	}

	return data[:len(data)-n], nil
}
