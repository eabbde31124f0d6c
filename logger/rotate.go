package logger

import (
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

const (
	rotateThresholdKB = 10 * 1024
	rotateMaxRolls    = 8
)

// RotateTo tees the log output into logFile. The file is rolled when it exceeds 10 MB and the last 8
// rolls are kept. Closing the returned rotator flushes the file.
func (l *Log) RotateTo(logFile string) (*rotator.Rotator, error) {
	err := os.MkdirAll(filepath.Dir(logFile), 0o700)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}

	r, err := rotator.New(logFile, rotateThresholdKB, false, rotateMaxRolls)
	if err != nil {
		return nil, errors.Errorf("failed to create file rotator: %s", err)
	}

	l.Tee(r)
	return r, nil
}
