package checksum

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// FileAccessError reports a file that could not be opened or read while
// hashing. Callers must treat it as "unable to check", never as a pass.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot access %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// FileMD5 streams the file at path through MD5 and returns the lowercase hex
// digest. MD5 is fine here: this guards against transfer corruption and
// truncation, not adversaries.
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &FileAccessError{Path: path, Err: err}
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", &FileAccessError{Path: path, Err: err}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
