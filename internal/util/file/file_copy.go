package file_util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies src to dst.
// Options:
//   - preservePerm: keep the source file mode (default true)
//   - preserveTime: keep the source modification time (default true)
//   - bufferSize: copy buffer size (default 32KB)
//   - overwrite: replace an existing destination (default true)
func CopyFile(src, dst string, options ...CopyOption) error {
	config := &copyConfig{
		preservePerm: true,
		preserveTime: true,
		bufferSize:   32 * 1024,
		overwrite:    true,
	}

	for _, opt := range options {
		opt(config)
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("source file: %v", err)
	}

	if !srcInfo.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	if _, err := os.Stat(dst); err == nil {
		if !config.overwrite {
			return fmt.Errorf("destination already exists: %s", dst)
		}
	}

	dstDir := filepath.Dir(dst)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("create destination directory: %v", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %v", err)
	}
	defer srcFile.Close()

	var dstFilePerm os.FileMode = 0666
	if config.preservePerm {
		dstFilePerm = srcInfo.Mode()
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, dstFilePerm)
	if err != nil {
		return fmt.Errorf("create destination file: %v", err)
	}
	defer func() {
		dstFile.Close()
		if err != nil {
			os.Remove(dst) // do not leave a partial copy behind
		}
	}()

	if config.bufferSize > 0 {
		buf := make([]byte, config.bufferSize)
		_, err = io.CopyBuffer(dstFile, srcFile, buf)
	} else {
		_, err = io.Copy(dstFile, srcFile)
	}

	if err != nil {
		return fmt.Errorf("copy contents: %v", err)
	}

	if err = dstFile.Sync(); err != nil {
		return fmt.Errorf("sync to disk: %v", err)
	}

	if config.preserveTime {
		if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
			return fmt.Errorf("set file times: %v", err)
		}
	}

	return nil
}

type copyConfig struct {
	preservePerm bool
	preserveTime bool
	bufferSize   int
	overwrite    bool
}

// CopyOption configures CopyFile.
type CopyOption func(*copyConfig)

func WithPreservePerm(preserve bool) CopyOption {
	return func(c *copyConfig) {
		c.preservePerm = preserve
	}
}

func WithPreserveTime(preserve bool) CopyOption {
	return func(c *copyConfig) {
		c.preserveTime = preserve
	}
}

func WithBufferSize(size int) CopyOption {
	return func(c *copyConfig) {
		c.bufferSize = size
	}
}

func WithOverwrite(overwrite bool) CopyOption {
	return func(c *copyConfig) {
		c.overwrite = overwrite
	}
}
