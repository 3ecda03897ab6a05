// Package ziputil extracts zip archives with bounds on entry count,
// uncompressed size and compression ratio, and with protection against
// path traversal (zip-slip).
package ziputil

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"goCsvStream/pkg/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Unzip extracts the named archive into destDir, which must already
// exist. On any rejection a *SafetyError is returned and extraction
// stops; files written before the rejection are left in place.
func Unzip(zipPath, destDir string, lim Limits) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer zr.Close()
	return extract(&zr.Reader, destDir, lim)
}

// UnzipReader is like Unzip but reads the archive from r.
func UnzipReader(r io.ReaderAt, size int64, destDir string, lim Limits) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return errors.WithStack(err)
	}
	return extract(zr, destDir, lim)
}

func extract(zr *zip.Reader, destDir string, lim Limits) error {
	if !utils.IsDir(destDir) {
		return errors.New("destination is not a directory: " + destDir)
	}
	destAbs, err := filepath.Abs(destDir)
	if err != nil {
		return errors.WithStack(err)
	}

	var totalWritten int64
	fileCount := 0
	for _, f := range zr.File {
		n, err := extractEntry(f, destAbs, lim, totalWritten, &fileCount)
		if err != nil {
			if se, ok := err.(*SafetyError); ok {
				logrus.WithFields(logrus.Fields{
					"entry":  se.Entry,
					"reason": se.Reason,
				}).Warn("zip entry rejected")
			}
			return err
		}
		totalWritten += n
	}

	logrus.WithFields(logrus.Fields{
		"entries": fileCount,
		"bytes":   totalWritten,
	}).Debug("zip extraction finished")
	return nil
}

func extractEntry(f *zip.File, destAbs string, lim Limits,
	totalWritten int64, fileCount *int) (int64, error) {

	// First check: the raw entry name must not be absolute and must not
	// start with a parent-directory segment.
	cleaned := path.Clean(strings.ReplaceAll(f.Name, "\\", "/"))
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return 0, &SafetyError{Entry: f.Name, Reason: ReasonPathEscape}
	}

	// Second check: the fully resolved path must stay under the
	// destination.
	target := filepath.Join(destAbs, filepath.FromSlash(cleaned))
	if target != destAbs && !strings.HasPrefix(target, destAbs+string(os.PathSeparator)) {
		return 0, &SafetyError{Entry: f.Name, Reason: ReasonPathEscape}
	}

	*fileCount++
	if *fileCount > lim.MaxFiles {
		return 0, &SafetyError{Entry: f.Name, Reason: ReasonTooManyFiles}
	}

	if f.FileInfo().IsDir() {
		return 0, utils.EnsureDir(target)
	}

	if fi, err := os.Lstat(target); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		return 0, &SafetyError{Entry: f.Name, Reason: ReasonSymlink}
	}

	if err := utils.EnsureDir(filepath.Dir(target)); err != nil {
		return 0, err
	}

	rc, err := f.Open()
	if err != nil {
		return 0, errors.WithStack(err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	bw := &boundedWriter{
		w:              out,
		entry:          f.Name,
		remaining:      lim.MaxBytes - totalWritten,
		compressedSize: int64(f.CompressedSize64),
		maxRatio:       lim.MaxRatio,
	}
	_, copyErr := io.Copy(bw, rc)
	if cerr := out.Close(); copyErr == nil && cerr != nil {
		copyErr = errors.WithStack(cerr)
	}
	if copyErr != nil {
		return bw.written, copyErr
	}

	logrus.WithFields(logrus.Fields{
		"entry": f.Name,
		"bytes": bw.written,
	}).Debug("zip entry extracted")
	return bw.written, nil
}
