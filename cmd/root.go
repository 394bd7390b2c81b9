// Package cmd provides the root command and CLI setup for triage.
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/PSE-TRIAGE/triage/internal/adapter"
	"github.com/PSE-TRIAGE/triage/internal/controller"
	"github.com/PSE-TRIAGE/triage/internal/domain"
	"github.com/PSE-TRIAGE/triage/internal/review"
	"github.com/PSE-TRIAGE/triage/pkg"
)

// workflow is wired on first use so flags and config are already resolved.
// Tests replace it with a mock before executing a command.
var workflow domain.Workflow

// apiURLFlag overrides api.base_url for one invocation.
var apiURLFlag string

// logFileFlag overrides log.filename.
var logFileFlag string

// verboseFlag switches logging to debug.
var verboseFlag bool

const rootLongDescription = `Triage is a terminal workstation for reviewing mutation-testing results.

Log in once, pick a project and walk through its surviving mutants: inspect
the mutated source, answer the project's review form and submit ratings.
Ranking algorithms can be applied to put the most interesting mutants first.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "triage",
		Short:        "Review mutation-testing results from the terminal",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))

			if workflow == nil {
				workflow = wireWorkflow(cmd.Root())
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func init() {
	configureRootFlags(rootCmd)
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&apiURLFlag, apiURLFlagName, viper.GetString(apiBaseURLKey), "base URL of the review API")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(apiURLFlagName), apiBaseURLKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "path of the rotating log file")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// wireWorkflow builds the gateway, cache, session store and UI from the
// resolved configuration.
func wireWorkflow(root *cobra.Command) domain.Workflow {
	tokens := adapter.NewFileTokenStore(expandHome(viper.GetString(credentialsFileKey)))

	client := adapter.NewAPIClient(
		viper.GetString(apiBaseURLKey),
		tokens,
		adapter.WithTimeout(viper.GetDuration(apiTimeoutKey)),
		adapter.WithUnauthorizedHandler(func() {
			root.PrintErrln("Your session is no longer valid; run 'triage login' to sign in again.")
		}),
	)
	api := adapter.NewReviewAPI(client, tokens)

	cache := pkg.NewQueryCache(
		pkg.WithStaleTime(viper.GetDuration(cacheStaleTimeKey)),
		pkg.WithRetry(viper.GetInt(cacheRetryKey)),
		pkg.WithRetryDelay(viper.GetDuration(cacheRetryDelayKey)),
		pkg.WithRetryIf(adapter.IsRetryable),
	)

	reviewer := review.NewReviewer(api, cache, review.NewSessionStore())
	ui := controller.NewUI(root, controller.IsTTY(os.Stdout))

	return domain.NewWorkflow(api, reviewer, ui)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// addProjectFlag registers the --project flag on cmd.
func addProjectFlag(cmd *cobra.Command, target *int, required bool) {
	usage := "id of the project"
	if !required {
		usage += " (default: the mutant's project)"
	}

	cmd.Flags().IntVarP(target, projectFlagName, "p", 0, usage)

	if required {
		cobra.CheckErr(cmd.MarkFlagRequired(projectFlagName))
	}
}

// addFilterFlag registers the --filter flag on cmd.
func addFilterFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, filterFlagName, "f", defaultReviewFilter,
		"mutants to show: all, unreviewed, reviewed, killed, survived, noCoverage")
}

// resolveFilter returns the --filter value, falling back to review.filter
// from config or env when the flag was not given.
func resolveFilter(cmd *cobra.Command, value string) (review.FilterMode, error) {
	if !cmd.Flags().Changed(filterFlagName) {
		value = viper.GetString(reviewFilterKey)
	}

	return review.ParseFilterMode(value)
}

func parseID(value, what string) (int, error) {
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive number", what, value)
	}

	return id, nil
}
