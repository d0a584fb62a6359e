package features

import (
	"encoding/base64"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sourcegraph/conc/iter"
)

// encodePhotos turns uploaded files into self-contained data URLs, in upload
// order. Empty files are skipped; the content type is sniffed from the bytes
// rather than trusted from the upload. Files are encoded in parallel and the
// first failure aborts the whole batch.
func encodePhotos(uploads []Upload) ([]string, error) {
	valid := make([]Upload, 0, len(uploads))
	for _, u := range uploads {
		if len(u.Data) > 0 {
			valid = append(valid, u)
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}

	urls, err := iter.MapErr(valid, func(u *Upload) (string, error) {
		mime := mimetype.Detect(u.Data)
		if !isImageMIME(mime.String()) {
			return "", fmt.Errorf("%w: %q is not an image", ErrInvalidInput, u.Name)
		}
		return "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(u.Data), nil
	})
	if err != nil {
		return nil, err
	}
	return urls, nil
}

func isImageMIME(mime string) bool {
	return len(mime) > 6 && mime[:6] == "image/"
}
