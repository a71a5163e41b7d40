package transplant

import (
	"os"
	"path/filepath"

	"github.com/flowtomic/zoo/internal/errors"
)

// ReadRewritten reads src and applies the rewriter.
func ReadRewritten(src string, r *Rewriter) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New("E121").
				WithDetail("Source file not found: " + src)
		}
		return "", errors.New("E122").Wrap(err)
	}
	return r.Rewrite(string(data)), nil
}

// CopyFile copies src to dst with its imports rewritten, creating the parent
// directories of dst as needed.
func CopyFile(src, dst string, r *Rewriter) error {
	content, err := ReadRewritten(src, r)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.New("E122").
			WithDetail("Failed to create " + filepath.Dir(dst) + ": " + err.Error())
	}
	if err := os.WriteFile(dst, []byte(content), 0644); err != nil {
		return errors.New("E122").
			WithDetail("Failed to write " + dst + ": " + err.Error())
	}
	return nil
}
