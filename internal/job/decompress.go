package job

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// ResolveInput applies the decompression rule to one benchmark-line field.
// An existing uncompressed path is used unchanged; otherwise the .gz sibling
// (or the literal .gz path itself) is decompressed exactly once and the
// decompressed path is returned. Re-resolving is a no-op once the plain copy
// exists. Fields naming no file at all pass through untouched, so option
// tokens in multi-argument lines survive.
//
// The task script renders the same rule in shell; this native version serves
// local runs and keeps the rule testable.
func ResolveInput(path string) (string, error) {
	plain := strings.TrimSuffix(path, constants.CompressedSuffix)
	if _, err := os.Stat(plain); err == nil {
		return plain, nil
	}

	gz := plain + constants.CompressedSuffix
	if _, err := os.Stat(gz); err != nil {
		return path, nil
	}

	if err := gunzipFile(gz, plain); err != nil {
		return "", errs.NewBuildError(fmt.Sprintf("decompress %s", gz), err)
	}
	return plain, nil
}

// gunzipFile writes the decompressed copy next to the archive. O_EXCL keeps
// concurrent resolvers from truncating each other's output.
func gunzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return err
	}
	defer zr.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil // another resolver won the race
		}
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, zr); err != nil {
		os.Remove(dst)
		return err
	}
	return out.Sync()
}
