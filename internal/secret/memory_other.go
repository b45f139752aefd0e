//go:build !unix

package secret

// Without mmap the secret lives on the heap. It is still zeroed on Close.
func allocate(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func release(data []byte) error {
	return nil
}
