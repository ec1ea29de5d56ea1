package resultsdir

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	v1pathutil "github.com/bitrise-io/go-utils/pathutil"
	"github.com/bitrise-io/go-utils/v2/pathutil"
)

// ErrDirectoryNotFound ...
var ErrDirectoryNotFound = errors.New("results directory not found")

const (
	reportExtension = ".xml"
	// MergedReportMarker excludes the merged report (and older copies of it) from the inputs.
	MergedReportMarker = "merged-results"
)

// Finder ...
type Finder interface {
	FindReports(dir string) ([]string, error)
}

type finder struct {
	pathChecker pathutil.PathChecker
}

// NewFinder ...
func NewFinder(pathChecker pathutil.PathChecker) Finder {
	return finder{pathChecker: pathChecker}
}

// FindReports returns the absolute paths of the shard reports in dir, sorted by file name.
func (f finder) FindReports(dir string) ([]string, error) {
	if exist, err := f.pathChecker.IsDirExists(dir); err != nil {
		return nil, fmt.Errorf("failed to check results directory (%s): %w", dir, err)
	} else if !exist {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}

	reports, err := v1pathutil.ListEntries(dir,
		f.fileFilter(),
		suffixFilter(reportExtension),
		markerFilter(MergedReportMarker),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list results directory (%s): %w", dir, err)
	}

	return reports, nil
}

func (f finder) fileFilter() v1pathutil.FilterFunc {
	return func(pth string) (bool, error) {
		isDir, err := f.pathChecker.IsDirExists(pth)
		return !isDir, err
	}
}

func suffixFilter(suffix string) v1pathutil.FilterFunc {
	return func(pth string) (bool, error) {
		return strings.HasSuffix(filepath.Base(pth), suffix), nil
	}
}

func markerFilter(marker string) v1pathutil.FilterFunc {
	return func(pth string) (bool, error) {
		return !strings.Contains(filepath.Base(pth), marker), nil
	}
}
