package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PSE-TRIAGE/triage/internal/domain"
)

const rateLongDescription = `Rate a mutant without opening the review screen.

Answers are given as --set <field-id>=<value>; field ids are listed by
'triage fields'. Answers of an existing rating are kept unless overridden,
so a single field can be updated:

  triage rate 42 --set 3=5 --set 4=true --set 5="equivalent mutant"

Ratings take 1-5, checkboxes take true/false (yes/no), an empty value
clears an answer.`

// rateCmd represents the rate command.
var rateCmd = newRateCmd()

func newRateCmd() *cobra.Command {
	var (
		projectID int
		values    []string
	)

	cmd := &cobra.Command{
		Use:   "rate <mutant-id>",
		Short: "Submit or update the rating of a mutant",
		Long:  rateLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mutantID, err := parseID(args[0], "mutant id")
			if err != nil {
				return err
			}

			fieldValues, err := parseFieldValues(values)
			if err != nil {
				return err
			}

			return workflow.Rate(cmd.Context(), domain.RateArgs{
				ProjectID: projectID,
				MutantID:  mutantID,
				Values:    fieldValues,
			})
		},
	}

	addProjectFlag(cmd, &projectID, false)
	cmd.Flags().StringArrayVar(&values, setFlagName, nil, "answer as <field-id>=<value> (can be repeated)")

	return cmd
}

// parseFieldValues turns repeated "<field-id>=<value>" flags into a map.
// A later flag for the same field wins.
func parseFieldValues(values []string) (map[int]string, error) {
	out := make(map[int]string, len(values))

	for _, value := range values {
		key, answer, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --%s %q: expected <field-id>=<value>", setFlagName, value)
		}

		fieldID, err := parseID(strings.TrimSpace(key), "field id")
		if err != nil {
			return nil, err
		}

		out[fieldID] = answer
	}

	return out, nil
}

func init() {
	rootCmd.AddCommand(rateCmd)
}
