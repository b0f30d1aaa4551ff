//go:build !vips

package slide

func openBackend(path string) (Slide, error) {
	s, err := openImage(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
