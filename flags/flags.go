package flags

import (
	"strconv"
	"strings"

	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/urfave/cli/v2"
)

var (
	OutputPath = &cli.StringFlag{
		Name:  "output",
		Usage: "Path to a Robot Framework output.xml",
	}
	OutputPaths = &cli.StringSliceFlag{
		Name:  "outputs",
		Usage: "Additional output.xml paths, combined with --output in the given order",
	}
	Merge = &cli.BoolFlag{
		Name:  "merge",
		Usage: "Merge outputs of re-executed suites instead of combining them",
	}
	SuiteName = &cli.StringFlag{
		Name:  "name",
		Usage: "Name of the top level suite when outputs are combined",
	}
	Sections = &cli.StringFlag{
		Name:  "sections",
		Value: "summary",
		Usage: "Comma separated report sections: summary, details, errors, timing or all",
	}
	IncludeKeywordTiming = &cli.BoolFlag{
		Name:  "include-keyword-timing",
		Usage: "Rank the slowest keywords in the timing section",
	}
	MaxSlowestTests = &cli.IntFlag{
		Name:  "max-slowest-tests",
		Value: 10,
		Usage: "Number of tests listed in the timing section",
	}
	MaxSlowestKeywords = &cli.IntFlag{
		Name:  "max-slowest-keywords",
		Value: 10,
		Usage: "Number of keywords listed in the timing section",
	}
	Pretty = &cli.BoolFlag{
		Name:  "pretty",
		Usage: "Indent the JSON report",
	}
	RebotCommand = &cli.StringFlag{
		Name:  "rebot-command",
		Value: "rebot",
		Usage: "Command used to combine outputs (e.g. 'python3 -m robot.rebot')",
	}
	RebotOptions = &cli.StringFlag{
		Name:  "rebot-options",
		Usage: "Additional rebot options",
	}
	ExportTestResults = &cli.BoolFlag{
		Name:  "export-test-results",
		Usage: "Export an xUnit report to the Bitrise test reports addon",
	}
	Verbose = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "Enable debug logging",
	}
	DeployDir = &cli.StringFlag{
		Name:  "deploy-dir",
		Usage: "Directory the report file is written to",
	}
)

// inputs maps step input keys to the flags overriding them.
var inputs = map[string]cli.Flag{
	"output_path":            OutputPath,
	"output_paths":           OutputPaths,
	"merge":                  Merge,
	"suite_name":             SuiteName,
	"sections":               Sections,
	"include_keyword_timing": IncludeKeywordTiming,
	"max_slowest_tests":      MaxSlowestTests,
	"max_slowest_keywords":   MaxSlowestKeywords,
	"pretty":                 Pretty,
	"rebot_command":          RebotCommand,
	"rebot_options":          RebotOptions,
	"export_test_results":    ExportTestResults,
	"verbose":                Verbose,
	"BITRISE_DEPLOY_DIR":     DeployDir,
}

var Flags = []cli.Flag{
	OutputPath,
	OutputPaths,
	Merge,
	SuiteName,
	Sections,
	IncludeKeywordTiming,
	MaxSlowestTests,
	MaxSlowestKeywords,
	Pretty,
	RebotCommand,
	RebotOptions,
	ExportTestResults,
	Verbose,
	DeployDir,
}

// ExpandArgs rewrites "--outputs a.xml b.xml" into "--outputs a.xml --outputs b.xml". Values
// following a list flag up to the next flag belong to it, otherwise the flag parser would stop at
// the second value and treat the rest of the command line as positional arguments.
func ExpandArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	expanded := []string{args[0]}
	listFlag := ""
	for i := 1; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(expanded, args[i:]...)
		}

		if strings.HasPrefix(arg, "-") {
			expanded = append(expanded, arg)
			listFlag = ""

			name, _, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
			if name == OutputPaths.Name {
				listFlag = "--" + name
				if !hasValue && i+1 < len(args) {
					i++
					expanded = append(expanded, args[i])
				}
			}
			continue
		}

		if listFlag != "" {
			expanded = append(expanded, listFlag)
		}
		expanded = append(expanded, arg)
	}
	return expanded
}

type repository struct {
	ctx  *cli.Context
	base env.Repository
}

// NewRepository resolves step inputs from explicitly set flags first, then from base, then from
// the flag defaults. Boolean flags read as yes/no, list flags are joined with '|'.
func NewRepository(ctx *cli.Context, base env.Repository) env.Repository {
	return repository{ctx: ctx, base: base}
}

func (r repository) Get(key string) string {
	flag, ok := inputs[key]
	if !ok {
		return r.base.Get(key)
	}

	name := flag.Names()[0]
	if r.ctx.IsSet(name) {
		return r.value(flag)
	}
	if value := r.base.Get(key); value != "" {
		return value
	}
	return r.value(flag)
}

func (r repository) Set(key, value string) error {
	return r.base.Set(key, value)
}

func (r repository) Unset(key string) error {
	return r.base.Unset(key)
}

func (r repository) List() []string {
	return r.base.List()
}

func (r repository) value(flag cli.Flag) string {
	name := flag.Names()[0]
	switch flag.(type) {
	case *cli.BoolFlag:
		if r.ctx.Bool(name) {
			return "yes"
		}
		return "no"
	case *cli.IntFlag:
		return strconv.Itoa(r.ctx.Int(name))
	case *cli.StringSliceFlag:
		return strings.Join(r.ctx.StringSlice(name), "|")
	default:
		return r.ctx.String(name)
	}
}
