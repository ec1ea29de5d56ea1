package fileremover

import (
	"errors"
	"io/fs"

	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/pathutil"
)

// FileRemover ...
type FileRemover interface {
	RemoveIfExists(name string) error
}

type fileRemover struct {
	fileManager fileutil.FileManager
	pathChecker pathutil.PathChecker
}

// NewFileRemover ...
func NewFileRemover(fileManager fileutil.FileManager, pathChecker pathutil.PathChecker) FileRemover {
	return fileRemover{
		fileManager: fileManager,
		pathChecker: pathChecker,
	}
}

// RemoveIfExists removes the named file. A missing file is not an error,
// a directory at name is left in place.
func (r fileRemover) RemoveIfExists(name string) error {
	if isDir, err := r.pathChecker.IsDirExists(name); err != nil {
		return err
	} else if isDir {
		return nil
	}

	if err := r.fileManager.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
