package step

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-utils/progress"
	"github.com/bitrise-io/go-utils/stringutil"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/steps-merge-junit-reports/fileremover"
	"github.com/bitrise-steplib/steps-merge-junit-reports/junit"
	"github.com/bitrise-steplib/steps-merge-junit-reports/output"
	"github.com/bitrise-steplib/steps-merge-junit-reports/resultsdir"
	"golang.org/x/sync/errgroup"
)

// ErrWriteFailure ...
var ErrWriteFailure = errors.New("failed to write merged report")

const (
	defaultResultsDir       = "cypress/results"
	defaultOutputFileName   = "merged-results.xml"
	defaultReportBundleName = "Cypress Tests"

	previewLength = 200
)

// Input ...
type Input struct {
	ResultsDir       string `env:"results_dir"`
	OutputPath       string `env:"output_path"`
	ReportBundleName string `env:"report_bundle_name"`
	VerboseLog       bool   `env:"verbose"`

	DeployDir string `env:"BITRISE_DEPLOY_DIR"`
}

// Config ...
type Config struct {
	ResultsDir       string
	OutputPath       string
	ReportBundleName string

	DeployDir string
}

// ReportMergeConfigParser ...
type ReportMergeConfigParser struct {
	inputParser  stepconf.InputParser
	logger       log.Logger
	pathModifier pathutil.PathModifier
}

// NewReportMergeConfigParser ...
func NewReportMergeConfigParser(inputParser stepconf.InputParser, logger log.Logger, pathModifier pathutil.PathModifier) ReportMergeConfigParser {
	return ReportMergeConfigParser{
		inputParser:  inputParser,
		logger:       logger,
		pathModifier: pathModifier,
	}
}

// ProcessConfig parses the step inputs and resolves every path against the working directory.
func (p ReportMergeConfigParser) ProcessConfig() (Config, error) {
	var input Input
	if err := p.inputParser.Parse(&input); err != nil {
		return Config{}, err
	}

	stepconf.Print(input)
	p.logger.Println()

	p.logger.EnableDebugLog(input.VerboseLog)

	resultsDir := input.ResultsDir
	if resultsDir == "" {
		resultsDir = defaultResultsDir
	}
	resultsDir, err := p.pathModifier.AbsPath(resultsDir)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute results directory path: %w", err)
	}

	outputPath := input.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(resultsDir, defaultOutputFileName)
	}
	outputPath, err = p.pathModifier.AbsPath(outputPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute output path: %w", err)
	}
	if filepath.Ext(outputPath) != ".xml" {
		return Config{}, fmt.Errorf("invalid output path (%s), extension should be .xml", outputPath)
	}

	if filepath.Dir(outputPath) == resultsDir && !strings.Contains(filepath.Base(outputPath), resultsdir.MergedReportMarker) {
		p.logger.Warnf("The output file (%s) is in the results directory but its name does not contain %q, the next run will merge it again.", outputPath, resultsdir.MergedReportMarker)
	}

	bundleName := input.ReportBundleName
	if bundleName == "" {
		bundleName = defaultReportBundleName
	}

	return Config{
		ResultsDir:       resultsDir,
		OutputPath:       outputPath,
		ReportBundleName: bundleName,
		DeployDir:        input.DeployDir,
	}, nil
}

// ReportMerger ...
type ReportMerger struct {
	logger         log.Logger
	finder         resultsdir.Finder
	fileManager    fileutil.FileManager
	fileRemover    fileremover.FileRemover
	outputExporter output.Exporter
}

// NewReportMerger ...
func NewReportMerger(logger log.Logger, finder resultsdir.Finder, fileManager fileutil.FileManager, fileRemover fileremover.FileRemover, outputExporter output.Exporter) ReportMerger {
	return ReportMerger{
		logger:         logger,
		finder:         finder,
		fileManager:    fileManager,
		fileRemover:    fileRemover,
		outputExporter: outputExporter,
	}
}

// Summary ...
type Summary struct {
	FilesProcessed int
	TotalTests     int
	TotalFailures  int
}

// Result ...
type Result struct {
	Summary

	OutputPath       string
	TotalTime        string
	ReportBundleName string
	DeployDir        string
}

// Run merges every shard report of the results directory into the output file.
// Nothing is written if any of the reports can not be parsed.
func (m ReportMerger) Run(cfg Config) (Result, error) {
	m.logger.Infof("Looking for reports in: %s", cfg.ResultsDir)

	pths, err := m.finder.FindReports(cfg.ResultsDir)
	if err != nil {
		return Result{}, err
	}

	m.logger.Printf("Found %d files to merge", len(pths))

	reports, err := m.parseReports(pths)
	if err != nil {
		return Result{}, err
	}

	merged := junit.Merge(reports...)
	content, err := junit.Marshal(merged)
	if err != nil {
		return Result{}, err
	}

	if err := m.writeReport(cfg.OutputPath, content); err != nil {
		return Result{}, err
	}

	result := Result{
		Summary: Summary{
			FilesProcessed: len(pths),
			TotalTests:     merged.Tests,
			TotalFailures:  merged.Failures,
		},
		OutputPath:       cfg.OutputPath,
		TotalTime:        junit.FormatSeconds(merged.Time),
		ReportBundleName: cfg.ReportBundleName,
		DeployDir:        cfg.DeployDir,
	}

	m.logger.Println()
	m.logger.Donef("Successfully merged %d files into %s", result.FilesProcessed, result.OutputPath)
	m.logger.Printf("- test suites: %d", len(merged.Suites))
	m.logger.Printf("- tests: %d", result.TotalTests)
	m.logger.Printf("- failures: %d", result.TotalFailures)
	m.logger.Printf("- time: %ss", result.TotalTime)
	m.logger.Println()
	m.logger.Printf("Merged file starts with:\n%s", stringutil.MaxFirstCharsWithDots(string(content), previewLength))

	return result, nil
}

func (m ReportMerger) parseReports(pths []string) ([]junit.Report, error) {
	reports := make([]junit.Report, len(pths))
	if len(pths) == 0 {
		return reports, nil
	}

	group, ctx := errgroup.WithContext(context.Background())
	group.SetLimit(runtime.NumCPU())

	for i, pth := range pths {
		i, pth := i, pth
		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			report, err := m.parseReport(pth)
			if err != nil {
				return err
			}

			// Each goroutine owns its index, the order of pths is kept.
			reports[i] = report
			return nil
		})
	}

	var err error
	progress.NewDefaultWrapper("Parsing reports").WrapAction(func() {
		err = group.Wait()
	})
	if err != nil {
		return nil, err
	}

	return reports, nil
}

func (m ReportMerger) parseReport(pth string) (junit.Report, error) {
	file, err := m.fileManager.Open(pth)
	if err != nil {
		return junit.Report{}, fmt.Errorf("failed to open report (%s): %w", pth, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			m.logger.Warnf("Failed to close report (%s): %s", pth, err)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return junit.Report{}, fmt.Errorf("failed to read report (%s): %w", pth, err)
	}

	report, err := junit.Parse(data)
	if err != nil {
		return junit.Report{}, fmt.Errorf("failed to parse report (%s): %w", pth, err)
	}

	if len(report.Suites) == 0 {
		m.logger.Debugf("%s: no test suites", filepath.Base(pth))
	} else {
		m.logger.Debugf("%s: %d suites, %d tests, %d failures", filepath.Base(pth), len(report.Suites), report.Tests, report.Failures)
	}

	return report, nil
}

func (m ReportMerger) writeReport(pth string, content []byte) error {
	if err := m.fileManager.Write(pth, string(content), 0644); err != nil {
		if removeErr := m.fileRemover.RemoveIfExists(pth); removeErr != nil {
			m.logger.Warnf("Failed to remove partially written report (%s): %s", pth, removeErr)
		}
		return fmt.Errorf("%w (%s): %w", ErrWriteFailure, pth, err)
	}
	return nil
}

// Export exposes the merged report for the subsequent steps.
// Export failures are logged, the merged report is already written at this point.
func (m ReportMerger) Export(result Result) {
	m.outputExporter.ExportTestRunResult(result.TotalFailures > 0)
	m.outputExporter.ExportMergedReport(result.DeployDir, result.OutputPath)

	if err := m.outputExporter.ExportTestAddonResult(result.OutputPath, result.ReportBundleName); err != nil {
		m.logger.Warnf("Failed to export test results: %s", err)
	}
}
