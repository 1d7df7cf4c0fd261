// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/linetally/linetally/internal/config"
	"github.com/linetally/linetally/internal/output"
	"github.com/linetally/linetally/internal/scan"
	"github.com/linetally/linetally/internal/tokenizer"
	"github.com/linetally/linetally/internal/types"
	"github.com/linetally/linetally/internal/utils"
)

const (
	formatFlagName          = "format"
	filesFlagName           = "files"
	suffixFlagName          = "suffix"
	jobsFlagName            = "jobs"
	countDuplicatesFlagName = "count-duplicates"
	generatedFlagName       = "generated"
	tokensFlagName          = "tokens"
	modelFlagName           = "model"
	clipboardFlagName       = "clipboard"
	outFlagName             = "out"
	configFlagName          = "config"
	verboseFlagName         = "verbose"
	versionFlagName         = "version"
	versionTemplate         = "linetally version: %s\n"

	defaultPath        = "."
	defaultOutTarget   = "STDOUT"
	defaultTokensModel = "gpt-4o"

	rootUse              = "linetally [paths...]"
	rootShortDescription = "linetally counts source lines of code"
	rootLongDescription  = `linetally scans files and directories, classifies every physical line as
code, documentation, empty, or string, and aggregates the counts per language
and for the whole project.
Files that are empty, binary, generated, bytewise duplicates, or written in a
language no lexer recognizes are reported under pseudo-languages instead of
being analyzed. Use --format to select text, json, or cloc-xml output.`
	rootUsageExample = `  # Count the current project and print the summary table
  linetally

  # Count two directories, JSON output, per-file rows included
  linetally --format json src tools

  # Restrict analysis to Python and SQL sources
  linetally --suffix py,sql .`

	languagesUse              = "languages"
	languagesShortDescription = "list languages the lexer recognizes"

	formatFlagDescription          = "output format: text, json, or cloc-xml"
	filesFlagDescription           = "include per-file rows in text output"
	suffixFlagDescription          = "comma separated list of file suffixes to analyze; shell patterns allowed"
	jobsFlagDescription            = "number of files analyzed concurrently; 0 selects the CPU count"
	countDuplicatesFlagDescription = "analyze bytewise identical files instead of marking them duplicate"
	generatedFlagDescription       = "additional regular expression marking generated files; repeatable"
	tokensFlagDescription          = "include LLM token estimates"
	modelFlagDescription           = "tokenizer model to use for token estimates"
	clipboardFlagDescription       = "copy the rendered report to the clipboard"
	outFlagDescription             = "file to write the report to; STDOUT prints to standard output"
	configFlagDescription          = "path to an explicit configuration file"
	verboseFlagDescription         = "log every analyzed and skipped file"
	versionFlagDescription         = "display application version"

	invalidFormatMessage        = "invalid format value '%s'"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	errorAbsolutePathFormat     = "abs failed for '%s': %w"
	errorPathMissingFormat      = "path '%s' does not exist"
	errorStatFormat             = "stat failed for '%s': %w"
	errorNoValidPaths           = "no valid paths"
	errorWriteReportFormat      = "cannot write report to '%s': %w"
)

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatText, types.FormatJSON, types.FormatClocXML:
		return true
	default:
		return false
	}
}

// Execute runs the linetally application.
func Execute() error {
	rootCommand := createRootCommand()
	return rootCommand.Execute()
}

// countFlags carries the flag values of one invocation.
type countFlags struct {
	format            string
	files             bool
	suffixList        string
	jobs              int
	countDuplicates   bool
	generatedPatterns []string
	tokens            bool
	model             string
	clipboard         bool
	out               string
	configPath        string
	verbose           bool
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var showVersion bool
	var flags countFlags

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return runCount(command, arguments, flags)
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.Flags().StringVarP(&flags.format, formatFlagName, "f", types.FormatText, formatFlagDescription)
	rootCommand.Flags().BoolVar(&flags.files, filesFlagName, false, filesFlagDescription)
	rootCommand.Flags().StringVarP(&flags.suffixList, suffixFlagName, "s", "*", suffixFlagDescription)
	rootCommand.Flags().IntVarP(&flags.jobs, jobsFlagName, "j", 0, jobsFlagDescription)
	rootCommand.Flags().BoolVar(&flags.countDuplicates, countDuplicatesFlagName, false, countDuplicatesFlagDescription)
	rootCommand.Flags().StringArrayVar(&flags.generatedPatterns, generatedFlagName, nil, generatedFlagDescription)
	rootCommand.Flags().BoolVar(&flags.tokens, tokensFlagName, false, tokensFlagDescription)
	rootCommand.Flags().StringVar(&flags.model, modelFlagName, defaultTokensModel, modelFlagDescription)
	rootCommand.Flags().BoolVar(&flags.clipboard, clipboardFlagName, false, clipboardFlagDescription)
	rootCommand.Flags().StringVarP(&flags.out, outFlagName, "o", defaultOutTarget, outFlagDescription)
	rootCommand.Flags().StringVar(&flags.configPath, configFlagName, "", configFlagDescription)
	rootCommand.Flags().BoolVarP(&flags.verbose, verboseFlagName, "v", false, verboseFlagDescription)
	rootCommand.AddCommand(createLanguagesCommand())
	return rootCommand
}

// runCount executes one counting run end to end.
func runCount(command *cobra.Command, arguments []string, flags countFlags) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}

	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: flags.configPath,
	})
	if configurationError != nil {
		return configurationError
	}
	settings := resolveSettings(command, flags, applicationConfiguration)

	if !isSupportedFormat(settings.format) {
		return fmt.Errorf(invalidFormatMessage, settings.format)
	}

	loggerLevel := zapcore.WarnLevel
	if settings.verbose {
		loggerLevel = zapcore.DebugLevel
	}
	loggerInstance, loggerError := utils.NewApplicationLoggerAt(loggerLevel)
	if loggerError != nil {
		return loggerError
	}
	defer loggerInstance.Sync()

	inputPaths := arguments
	if len(inputPaths) == 0 {
		inputPaths = []string{defaultPath}
	}
	validatedPaths, pathsError := resolveAndValidatePaths(inputPaths)
	if pathsError != nil {
		return pathsError
	}

	generatedPredicate, predicateError := settings.configuration.CompileGeneratedPredicate()
	if predicateError != nil {
		return predicateError
	}

	var tokenCounter tokenizer.Counter
	if settings.tokens {
		counter, _, counterError := tokenizer.NewCounter(tokenizer.Config{Model: settings.model})
		if counterError != nil {
			return counterError
		}
		tokenCounter = counter
	}

	scanResult, scanError := scan.Run(context.Background(), scan.Options{
		Paths:           validatedPaths,
		Suffixes:        settings.suffixes,
		Workers:         settings.jobs,
		CountDuplicates: settings.countDuplicates,
		IsGenerated:     generatedPredicate,
		Markers:         settings.configuration.MarkerTable(),
		Counter:         tokenCounter,
		Logger:          loggerInstance,
	})
	if scanError != nil {
		return scanError
	}

	report := buildReport(scanResult, settings.files || settings.format != types.FormatText)
	rendered, renderError := renderReport(report, settings)
	if renderError != nil {
		return renderError
	}

	if settings.clipboard {
		if clipboardError := clipboard.WriteAll(rendered); clipboardError != nil {
			loggerInstance.Warn("cannot copy report to clipboard", zap.Error(clipboardError))
		}
	}
	return writeReport(rendered, settings.out)
}

// resolvedSettings is the effective configuration after flag overrides.
type resolvedSettings struct {
	configuration   config.ApplicationConfiguration
	format          string
	files           bool
	suffixes        []string
	jobs            int
	countDuplicates bool
	tokens          bool
	model           string
	clipboard       bool
	out             string
	verbose         bool
}

// resolveSettings overlays explicit flags onto the merged configuration.
// A flag wins only when it was set on the command line.
func resolveSettings(command *cobra.Command, flags countFlags, configuration config.ApplicationConfiguration) resolvedSettings {
	if len(flags.generatedPatterns) > 0 {
		configuration.Generated.Patterns = utils.DeduplicatePatterns(
			append(configuration.Generated.Patterns, flags.generatedPatterns...))
	}

	settings := resolvedSettings{
		configuration: configuration,
		format:        types.FormatText,
		suffixes:      splitSuffixList("*"),
		out:           defaultOutTarget,
		model:         defaultTokensModel,
		verbose:       flags.verbose,
	}

	if configuration.Format != "" {
		settings.format = configuration.Format
	}
	if configuration.Files != nil {
		settings.files = *configuration.Files
	}
	if len(configuration.Suffixes) > 0 {
		settings.suffixes = configuration.Suffixes
	}
	if configuration.Jobs != nil {
		settings.jobs = *configuration.Jobs
	}
	if configuration.CountDuplicates != nil {
		settings.countDuplicates = *configuration.CountDuplicates
	}
	if configuration.Tokens.Enabled != nil {
		settings.tokens = *configuration.Tokens.Enabled
	}
	if configuration.Tokens.Model != "" {
		settings.model = configuration.Tokens.Model
	}
	if configuration.Clipboard != nil {
		settings.clipboard = *configuration.Clipboard
	}
	if configuration.Out != "" {
		settings.out = configuration.Out
	}

	commandFlags := command.Flags()
	if commandFlags.Changed(formatFlagName) {
		settings.format = flags.format
	}
	if commandFlags.Changed(filesFlagName) {
		settings.files = flags.files
	}
	if commandFlags.Changed(suffixFlagName) {
		settings.suffixes = splitSuffixList(flags.suffixList)
	}
	if commandFlags.Changed(jobsFlagName) {
		settings.jobs = flags.jobs
	}
	if commandFlags.Changed(countDuplicatesFlagName) {
		settings.countDuplicates = flags.countDuplicates
	}
	if commandFlags.Changed(tokensFlagName) {
		settings.tokens = flags.tokens
	}
	if commandFlags.Changed(modelFlagName) {
		settings.model = flags.model
	}
	if commandFlags.Changed(clipboardFlagName) {
		settings.clipboard = flags.clipboard
	}
	if commandFlags.Changed(outFlagName) {
		settings.out = flags.out
	}
	return settings
}

// splitSuffixList parses the comma separated suffix flag value.
func splitSuffixList(suffixList string) []string {
	parts := strings.Split(suffixList, ",")
	suffixes := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			suffixes = append(suffixes, trimmed)
		}
	}
	return suffixes
}

// buildReport converts a scan result into writer rows.
func buildReport(scanResult scan.Result, includeFiles bool) types.Report {
	languageRows, totals := scanResult.Summary.Rows()
	report := types.Report{Languages: languageRows, Totals: totals}
	if !includeFiles {
		return report
	}
	report.Files = make([]types.FileRow, 0, len(scanResult.Files))
	for _, record := range scanResult.Files {
		report.Files = append(report.Files, types.FileRow{
			Path:          record.Path,
			Language:      record.SummaryLanguage(),
			Group:         record.Group,
			State:         record.State,
			StateDetail:   record.StateDetail,
			LineCount:     record.LineCount,
			Code:          record.Code,
			Documentation: record.Documentation,
			Empty:         record.Empty,
			String:        record.String,
			Tokens:        record.Tokens,
		})
	}
	return report
}

// renderReport renders the report in the selected format.
func renderReport(report types.Report, settings resolvedSettings) (string, error) {
	switch settings.format {
	case types.FormatJSON:
		return output.RenderJSON(report)
	case types.FormatClocXML:
		return output.RenderClocXML(report, "linetally", utils.GetApplicationVersion())
	default:
		rendered := ""
		if len(report.Files) > 0 && settings.files {
			rendered += output.RenderFilesText(report) + "\n"
		}
		rendered += output.RenderSummaryText(report)
		return rendered, nil
	}
}

// writeReport writes the rendered report to the configured target.
func writeReport(rendered string, outTarget string) error {
	if outTarget == defaultOutTarget || outTarget == "" {
		_, writeError := fmt.Print(rendered)
		return writeError
	}
	if writeError := os.WriteFile(outTarget, []byte(rendered), 0o644); writeError != nil {
		return fmt.Errorf(errorWriteReportFormat, outTarget, writeError)
	}
	return nil
}

// resolveAndValidatePaths converts input paths to absolute form and validates their existence.
func resolveAndValidatePaths(inputs []string) ([]types.ValidatedPath, error) {
	seen := make(map[string]struct{})
	var result []types.ValidatedPath
	for _, inputPath := range inputs {
		absolutePath, absolutePathError := filepath.Abs(inputPath)
		if absolutePathError != nil {
			return nil, fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
		}
		cleanPath := filepath.Clean(absolutePath)
		if _, ok := seen[cleanPath]; ok {
			continue
		}
		info, fileStatusError := os.Stat(cleanPath)
		if fileStatusError != nil {
			if os.IsNotExist(fileStatusError) {
				return nil, fmt.Errorf(errorPathMissingFormat, inputPath)
			}
			return nil, fmt.Errorf(errorStatFormat, inputPath, fileStatusError)
		}
		seen[cleanPath] = struct{}{}
		result = append(result, types.ValidatedPath{AbsolutePath: cleanPath, IsDir: info.IsDir()})
	}
	if len(result) == 0 {
		return nil, fmt.Errorf(errorNoValidPaths)
	}
	return result, nil
}
