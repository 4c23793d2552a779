package loader

import (
	"errors"
	"fmt"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-robot-framework-results/artifact"
	"github.com/bitrise-steplib/steps-robot-framework-results/model"
	"github.com/bitrise-steplib/steps-robot-framework-results/rebot"
)

const stagedFileName = "output.xml"

// ErrNoOutputs ...
var ErrNoOutputs = errors.New("no output documents given")

// Parser ...
type Parser interface {
	ParseFile(pth string) (*model.Result, error)
}

// Combiner ...
type Combiner interface {
	Combine(params rebot.Params) error
}

// Loader turns one or more output.xml documents into a single result tree.
type Loader struct {
	logger            log.Logger
	parser            Parser
	combiner          Combiner
	stager            artifact.Stager
	additionalOptions []string
}

// NewLoader ...
func NewLoader(logger log.Logger, parser Parser, combiner Combiner, stager artifact.Stager, additionalOptions []string) Loader {
	return Loader{
		logger:            logger,
		parser:            parser,
		combiner:          combiner,
		stager:            stager,
		additionalOptions: additionalOptions,
	}
}

// Load parses a single document directly. Several documents are combined by rebot into a staged
// document first: merge mode when preferred, with combine mode as the fallback. The returned flag
// reports whether a true merge happened.
func (l Loader) Load(outputs []string, preferMerge bool, name string) (*model.Result, bool, error) {
	if len(outputs) == 0 {
		return nil, false, ErrNoOutputs
	}

	if len(outputs) == 1 {
		result, err := l.parser.ParseFile(outputs[0])
		if err != nil {
			return nil, false, fmt.Errorf("failed to load output: %w", err)
		}
		return result, false, nil
	}

	pth, release, err := l.stager.Stage(stagedFileName)
	if err != nil {
		return nil, false, fmt.Errorf("failed to stage combined output: %w", err)
	}
	defer release()

	if preferMerge {
		result, err := l.combine(outputs, pth, rebot.ModeMerge, name)
		if err == nil {
			return result, true, nil
		}

		l.logger.Warnf("rebot --merge failed (%s). Merge requires matching root suite names across outputs. Falling back to combine mode.", err)
	}

	result, err := l.combine(outputs, pth, rebot.ModeCombine, name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to combine outputs: %w", err)
	}
	return result, false, nil
}

func (l Loader) combine(outputs []string, pth string, mode rebot.Mode, name string) (*model.Result, error) {
	l.logger.Println()
	l.logger.Infof("Combining %d outputs (%s mode)", len(outputs), mode)

	if err := l.combiner.Combine(rebot.Params{
		Outputs:           outputs,
		Destination:       pth,
		Mode:              mode,
		Name:              name,
		AdditionalOptions: l.additionalOptions,
	}); err != nil {
		return nil, err
	}

	size, err := l.stager.Size(pth)
	if err != nil {
		return nil, fmt.Errorf("rebot did not produce output.xml: %w", err)
	}
	if size == 0 {
		return nil, fmt.Errorf("rebot produced an empty output.xml")
	}

	return l.parser.ParseFile(pth)
}
