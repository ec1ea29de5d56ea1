package main

import (
	"fmt"
	"os"

	"github.com/bitrise-io/go-steputils/v2/export"
	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-steputils/v2/stepenv"
	"github.com/bitrise-io/go-utils/colorstring"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/steps-merge-junit-reports/fileremover"
	"github.com/bitrise-steplib/steps-merge-junit-reports/output"
	"github.com/bitrise-steplib/steps-merge-junit-reports/resultsdir"
	"github.com/bitrise-steplib/steps-merge-junit-reports/step"
	"github.com/bitrise-steplib/steps-merge-junit-reports/testaddon"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger := log.NewLogger()
	envRepository := env.NewRepository()
	stepEnvRepository := stepenv.NewRepository(envRepository)

	configParser := step.NewReportMergeConfigParser(stepconf.NewInputParser(envRepository), logger, pathutil.NewPathModifier())
	config, err := configParser.ProcessConfig()
	if err != nil {
		printError(fmt.Errorf("failed to process Step inputs: %w", err))
		return 1
	}

	merger := createReportMerger(logger, envRepository, stepEnvRepository)

	result, err := merger.Run(config)
	if err != nil {
		printError(err)
		return 1
	}

	merger.Export(result)

	return 0
}

func createReportMerger(logger log.Logger, envRepository, stepEnvRepository env.Repository) step.ReportMerger {
	cmdFactory := command.NewFactory(envRepository)
	fileManager := fileutil.NewFileManager()

	testAddonExporter := testaddon.NewExporter(testaddon.NewTestAddon(logger, cmdFactory, fileManager))
	outputExporter := output.NewExporter(stepEnvRepository, logger, export.NewExporter(cmdFactory, fileManager), testAddonExporter)

	pathChecker := pathutil.NewPathChecker()

	return step.NewReportMerger(
		logger,
		resultsdir.NewFinder(pathChecker),
		fileManager,
		fileremover.NewFileRemover(fileManager, pathChecker),
		outputExporter,
	)
}

func printError(err error) {
	_, _ = fmt.Fprintln(os.Stderr, colorstring.Red(err.Error()))
}
