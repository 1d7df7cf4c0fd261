// Package config loads and merges linetally configuration from the global
// and local configuration files, and compiles the generated-file patterns
// into the predicate the analysis core consumes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/linetally/linetally/internal/analysis"
	"github.com/linetally/linetally/internal/utils"
)

// generatedContentLineLimit is how many leading content lines the generated
// patterns are matched against.
const generatedContentLineLimit = 16

// defaultGeneratedPatterns mark files produced by tools rather than people.
var defaultGeneratedPatterns = []string{
	`(?i)automatically generated`,
	`(?i)do not edit`,
	`(?i)generated by`,
}

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds configuration defaults for the count command.
type ApplicationConfiguration struct {
	Format          string                 `mapstructure:"format"`
	Files           *bool                  `mapstructure:"files"`
	Suffixes        []string               `mapstructure:"suffixes"`
	Jobs            *int                   `mapstructure:"jobs"`
	CountDuplicates *bool                  `mapstructure:"count_duplicates"`
	Generated       GeneratedConfiguration `mapstructure:"generated"`
	Markers         map[string][]string    `mapstructure:"markers"`
	Tokens          TokenConfiguration     `mapstructure:"tokens"`
	Clipboard       *bool                  `mapstructure:"clipboard"`
	Out             string                 `mapstructure:"out"`
}

// GeneratedConfiguration configures generated-file detection.
type GeneratedConfiguration struct {
	// Patterns are regular expressions matched against file names and the
	// leading content lines.
	Patterns []string `mapstructure:"patterns"`
	// MergeDefaults keeps the built-in patterns in addition to Patterns.
	MergeDefaults *bool `mapstructure:"merge_defaults"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	merged.Generated.Patterns = utils.DeduplicatePatterns(merged.Generated.Patterns)
	merged.Suffixes = utils.DeduplicatePatterns(merged.Suffixes)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Files != nil {
		result.Files = cloneBool(override.Files)
	}
	if len(override.Suffixes) > 0 {
		result.Suffixes = append([]string{}, override.Suffixes...)
	}
	if override.Jobs != nil {
		result.Jobs = cloneInt(override.Jobs)
	}
	if override.CountDuplicates != nil {
		result.CountDuplicates = cloneBool(override.CountDuplicates)
	}
	result.Generated = result.Generated.merge(override.Generated)
	if len(override.Markers) > 0 {
		combined := make(map[string][]string, len(config.Markers)+len(override.Markers))
		for languageName, markers := range config.Markers {
			combined[languageName] = append([]string{}, markers...)
		}
		for languageName, markers := range override.Markers {
			combined[languageName] = append([]string{}, markers...)
		}
		result.Markers = combined
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	if override.Out != "" {
		result.Out = override.Out
	}
	return result
}

func (config GeneratedConfiguration) merge(override GeneratedConfiguration) GeneratedConfiguration {
	result := config
	if len(override.Patterns) > 0 {
		result.Patterns = append([]string{}, utils.DeduplicatePatterns(override.Patterns)...)
	}
	if override.MergeDefaults != nil {
		result.MergeDefaults = cloneBool(override.MergeDefaults)
	}
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

// MarkerTable materializes the configured no-operation markers: the built-in
// table overlaid with per-language overrides.
func (config ApplicationConfiguration) MarkerTable() analysis.MarkerTable {
	table := analysis.DefaultMarkerTable()
	table.Merge(config.Markers)
	return table
}

// CompileGeneratedPredicate compiles the configured patterns into the
// predicate consumed by the gatekeeper. The predicate matches the file name
// and the leading content lines against every pattern.
func (config ApplicationConfiguration) CompileGeneratedPredicate() (analysis.GeneratedPredicate, error) {
	patternTexts := append([]string{}, config.Generated.Patterns...)
	if config.Generated.MergeDefaults == nil || *config.Generated.MergeDefaults {
		patternTexts = append(patternTexts, defaultGeneratedPatterns...)
	}
	patternTexts = utils.DeduplicatePatterns(patternTexts)

	compiled := make([]*regexp.Regexp, 0, len(patternTexts))
	for _, patternText := range patternTexts {
		pattern, compileErr := regexp.Compile(patternText)
		if compileErr != nil {
			return nil, fmt.Errorf("compile generated pattern %q: %w", patternText, compileErr)
		}
		compiled = append(compiled, pattern)
	}
	if len(compiled) == 0 {
		return nil, nil
	}

	return func(path string, contentHead []byte) bool {
		fileName := filepath.Base(path)
		headingLines := strings.SplitN(string(contentHead), "\n", generatedContentLineLimit+1)
		if len(headingLines) > generatedContentLineLimit {
			headingLines = headingLines[:generatedContentLineLimit]
		}
		heading := strings.Join(headingLines, "\n")
		for _, pattern := range compiled {
			if pattern.MatchString(fileName) || pattern.MatchString(heading) {
				return true
			}
		}
		return false
	}, nil
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
