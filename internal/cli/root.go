package cli

import (
	"fmt"
	"os"

	"github.com/scanhub/scanhub/internal/config"
	"github.com/scanhub/scanhub/internal/logging"
	"github.com/spf13/cobra"
)

const (
	// Exit codes, stable for CI consumers
	ExitOK           = 0 // Success
	ExitPolicyFail   = 1 // Policy violation or threshold exceeded
	ExitInvalidInput = 2 // Schema validation or parse error
	ExitRuntimeError = 3 // I/O, permissions, or runtime error
)

var (
	// Global config instance
	cfg *config.Config

	// Global flags
	configFile string
	verbose    bool
	debug      bool

	// version is injected from main via SetVersion
	version = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "scanhub",
	Short: "ScanHub - Security scan normalization pipeline",
	Long: `ScanHub collects JSON reports from security scanners (Gitleaks, Semgrep,
OWASP Dependency-Check, Trivy, OWASP ZAP), normalizes every finding into a
common schema, and produces a single risk-scored vulnerability report.

It provides:
- One normalized document across secrets, SAST, SCA, container, and DAST findings
- Weighted risk scoring with severity-ranked output
- Compliance framework mapping (ISO 27001, PCI-DSS, OWASP Top 10, CWE Top 25)
- Trend analysis across stored runs
- CI/CD integration with exit codes and policy gates

Quick start:
  scanhub discover
  scanhub process ./reports
  scanhub process ./reports --store --fail-threshold 50

Other commands:
  scanhub validate reports/trivy-report.json
  scanhub diff --fail-new
  scanhub export --format sarif
  scanhub browse`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		var err error
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Override config with flags if provided
		if verbose {
			cfg.Verbose = true
		}
		if debug {
			cfg.Debug = true
		}

		logging.Init(cfg.Verbose, cfg.Debug)

		return nil
	},
}

// SetVersion records the build version shown by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		os.Exit(HandleError(err))
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ~/scanhub.yaml or ./scanhub.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"debug mode (very verbose)")

	// Add subcommands
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(explainScoreCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ScanHub %s\n", version)
		fmt.Println("Security scan normalization pipeline")
	},
}

// HandleError determines the appropriate exit code for an error
func HandleError(err error) int {
	if err == nil {
		return ExitOK
	}

	switch err.(type) {
	case *ValidationError:
		return ExitInvalidInput
	case *ThresholdExceededError:
		return ExitPolicyFail
	case *PolicyViolationError:
		return ExitPolicyFail
	case *NewFindingsError:
		return ExitPolicyFail
	default:
		return ExitRuntimeError
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ThresholdExceededError represents a risk score threshold failure
type ThresholdExceededError struct {
	RiskScore int
	Threshold int
}

func (e *ThresholdExceededError) Error() string {
	return fmt.Sprintf("risk score (%d) exceeds threshold (%d)", e.RiskScore, e.Threshold)
}

// PolicyViolationError represents a policy gate failure
type PolicyViolationError struct {
	Violations int
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("policy check failed with %d violation(s)", e.Violations)
}

// NewFindingsError is returned by diff --fail-new when the current run
// introduced findings absent from the baseline
type NewFindingsError struct {
	Count int
}

func (e *NewFindingsError) Error() string {
	return fmt.Sprintf("found %d new finding(s) since baseline", e.Count)
}

// logVerbose logs a message at info level (shown with --verbose)
func logVerbose(format string, args ...interface{}) {
	logging.L().Infof(format, args...)
}

// logDebug logs a message at debug level (shown with --debug)
func logDebug(format string, args ...interface{}) {
	logging.L().Debugf(format, args...)
}

// logError logs an error message
func logError(format string, args ...interface{}) {
	logging.L().Errorf(format, args...)
}
