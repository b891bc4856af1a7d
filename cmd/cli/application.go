package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/mv-git/internal/relocate"
	"github.com/temirov/mv-git/internal/relocate/dependencies"
	"github.com/temirov/mv-git/internal/utils"
	pathutils "github.com/temirov/mv-git/internal/utils/path"
)

const (
	applicationNameConstant             = "mv-git <source> <destination>"
	applicationShortDescriptionConstant = "Relocate Git repositories from a source directory into a destination"
	applicationLongDescriptionConstant  = "mv-git scans the immediate children of a source directory, detects Git repositories by their .git entry, and moves or copies them into a destination directory while skipping files matched by each repository's root .gitignore."
	configFileFlagNameConstant          = "config"
	configFileFlagUsageConstant         = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant            = "log-level"
	logLevelFlagUsageConstant           = "Override the configured log level."
	logFormatFlagNameConstant           = "log-format"
	logFormatFlagUsageConstant          = "Override the configured log format (structured or console)."
	copyFlagNameConstant                = "copy"
	copyFlagShorthandConstant           = "c"
	copyFlagUsageConstant               = "Copy matched repositories instead of moving them."
	dryRunFlagNameConstant              = "dry-run"
	dryRunFlagUsageConstant             = "Preview transfers without changing the filesystem."
	requireCleanFlagNameConstant        = "require-clean"
	requireCleanFlagUsageConstant       = "Skip repositories with dirty worktrees before a move."
	commonConfigurationKeyConstant      = "common"
	commonLogLevelConfigKeyConstant     = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant    = commonConfigurationKeyConstant + ".log_format"
	relocateConfigurationKeyConstant    = "tools.relocate"
	relocateCopyConfigKeyConstant       = relocateConfigurationKeyConstant + ".copy"
	relocateDryRunConfigKeyConstant     = relocateConfigurationKeyConstant + ".dry_run"
	relocateRequireCleanConfigKey       = relocateConfigurationKeyConstant + ".require_clean"
	environmentPrefixConstant           = "MVGIT"
	configurationNameConstant           = "config"
	configurationTypeConstant           = "yaml"
	configurationInitializedMessage     = "configuration initialized"
	configurationLogLevelFieldConstant  = "log_level"
	configurationLogFormatFieldConstant = "log_format"
	configurationFileFieldConstant      = "config_file"
	configurationLoadErrorTemplate      = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant     = "unable to flush logger: %w"
	loggerNotInitializedMessageConstant = "logger not initialized"
	defaultConfigurationSearchPath      = "."
	missingArgumentsMessageConstant     = "source and destination directories are required"
	failedTransfersErrorTemplate        = "completed with %d failed transfers"
	positionalArgumentCountConstant     = 2
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across runs.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for tool behaviors.
type ApplicationToolsConfiguration struct {
	Relocate RelocateConfiguration `mapstructure:"relocate"`
}

// RelocateConfiguration captures configurable defaults for the relocation run.
type RelocateConfiguration struct {
	Copy         bool `mapstructure:"copy"`
	DryRun       bool `mapstructure:"dry_run"`
	RequireClean bool `mapstructure:"require_clean"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	homeExpander          *pathutils.HomeExpander
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPath},
	)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		homeExpander:        pathutils.NewHomeExpander(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.MaximumNArgs(positionalArgumentCountConstant),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRelocation(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.Flags().BoolP(copyFlagNameConstant, copyFlagShorthandConstant, false, copyFlagUsageConstant)
	cobraCommand.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagUsageConstant)
	cobraCommand.Flags().Bool(requireCleanFlagNameConstant, false, requireCleanFlagUsageConstant)

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// ExecuteWithArguments runs the application against explicit arguments and writers.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	application.rootCommand.SetArgs(arguments)
	return application.Execute()
}

// RootCommand exposes the underlying Cobra command for test harnesses.
func (application *Application) RootCommand() *cobra.Command {
	return application.rootCommand
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
		relocateCopyConfigKeyConstant:    false,
		relocateDryRunConfigKeyConstant:  false,
		relocateRequireCleanConfigKey:    false,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplate, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessage,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) runRelocation(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	if len(arguments) == 0 {
		return command.Help()
	}
	if len(arguments) != positionalArgumentCountConstant {
		return errors.New(missingArgumentsMessageConstant)
	}

	sourcePath := application.homeExpander.Expand(strings.TrimSpace(arguments[0]))
	destinationPath := application.homeExpander.Expand(strings.TrimSpace(arguments[1]))

	relocateOptions := relocate.Options{
		SourcePath:           sourcePath,
		DestinationPath:      destinationPath,
		CopyMode:             application.resolveToggle(command, copyFlagNameConstant, application.configuration.Tools.Relocate.Copy),
		DryRun:               application.resolveToggle(command, dryRunFlagNameConstant, application.configuration.Tools.Relocate.DryRun),
		RequireCleanWorktree: application.resolveToggle(command, requireCleanFlagNameConstant, application.configuration.Tools.Relocate.RequireClean),
	}

	fileSystem := dependencies.ResolveFileSystem(nil)
	relocateDependencies := relocate.Dependencies{
		FileSystem: fileSystem,
		Classifier: dependencies.ResolveRepositoryClassifier(nil, fileSystem),
		RuleLoader: dependencies.ResolveIgnoreRuleLoader(nil, fileSystem),
		Logger:     application.logger,
		Output:     command.OutOrStdout(),
		Errors:     command.ErrOrStderr(),
	}

	if relocateOptions.RequireCleanWorktree {
		gitManager, managerError := dependencies.ResolveGitRepositoryManager(nil, application.logger)
		if managerError != nil {
			return managerError
		}
		relocateDependencies.GitManager = gitManager
	}

	summary, relocationError := relocate.Relocate(command.Context(), relocateDependencies, relocateOptions)
	if relocationError != nil {
		return relocationError
	}

	if summary.Failed > 0 {
		return fmt.Errorf(failedTransfersErrorTemplate, summary.Failed)
	}

	return nil
}

func (application *Application) resolveToggle(command *cobra.Command, flagName string, configuredValue bool) bool {
	flagValue, flagError := command.Flags().GetBool(flagName)
	if flagError != nil {
		return configuredValue
	}
	if command.Flags().Changed(flagName) {
		return flagValue
	}
	return configuredValue
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}
