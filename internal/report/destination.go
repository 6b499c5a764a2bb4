package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	createDestinationFailureTemplateConstant = "create report destination %s: %w"
	closeDestinationFailureTemplateConstant  = "close report destination %s: %w"
	reportDirectoryPermissions               = 0o755
	reportFilePermissions                    = 0o644
)

// OpenDestination returns fallback when path is empty, or a truncated file at path otherwise. The
// returned close function must always be called.
func OpenDestination(fileSystem afero.Fs, path string, fallback io.Writer) (io.Writer, func() error, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return fallback, func() error { return nil }, nil
	}
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	if directoryError := fileSystem.MkdirAll(filepath.Dir(trimmedPath), reportDirectoryPermissions); directoryError != nil {
		return nil, nil, fmt.Errorf(createDestinationFailureTemplateConstant, trimmedPath, directoryError)
	}
	file, openError := fileSystem.OpenFile(trimmedPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, reportFilePermissions)
	if openError != nil {
		return nil, nil, fmt.Errorf(createDestinationFailureTemplateConstant, trimmedPath, openError)
	}
	return file, file.Close, nil
}

// WriteToDestination opens the destination for path, hands it to write and closes it afterwards.
func WriteToDestination(fileSystem afero.Fs, path string, fallback io.Writer, write func(io.Writer) error) (resultError error) {
	destination, closeDestination, openError := OpenDestination(fileSystem, path, fallback)
	if openError != nil {
		return openError
	}
	defer func() {
		if closeError := closeDestination(); closeError != nil {
			resultError = errors.Join(resultError, fmt.Errorf(closeDestinationFailureTemplateConstant, strings.TrimSpace(path), closeError))
		}
	}()
	return write(destination)
}
