package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
)

// Stager hands out scratch locations for intermediate documents.
type Stager interface {
	// Stage reserves fileName inside a fresh temporary directory. release removes the directory
	// and is safe to call more than once.
	Stage(fileName string) (pth string, release func(), err error)
	// Size returns the size of the file at pth, or an error when it is missing.
	Size(pth string) (int64, error)
}

type stager struct {
	logger       log.Logger
	pathProvider pathutil.PathProvider
	pathChecker  pathutil.PathChecker
}

// NewStager ...
func NewStager(logger log.Logger, pathProvider pathutil.PathProvider, pathChecker pathutil.PathChecker) Stager {
	return &stager{
		logger:       logger,
		pathProvider: pathProvider,
		pathChecker:  pathChecker,
	}
}

func (s *stager) Stage(fileName string) (string, func(), error) {
	dir, err := s.pathProvider.CreateTempDir("robot-results")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	released := false
	release := func() {
		if released {
			return
		}
		released = true
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warnf("Failed to remove temp dir (%s): %s", dir, err)
		}
	}

	return filepath.Join(dir, fileName), release, nil
}

func (s *stager) Size(pth string) (int64, error) {
	exists, err := s.pathChecker.IsPathExists(pth)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("%s does not exist", pth)
	}

	info, err := os.Stat(pth)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
