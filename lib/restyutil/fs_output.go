package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"refuel/internal/assert"
)

// FilesystemOutput writes every instrumented http message into its own file.
type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput clears out `dir` and uses it as the destination of messages.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	assert.NotEmptyStr(dir)
	err := os.RemoveAll(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}
