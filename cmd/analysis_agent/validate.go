package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/fit-analysis/internal/observability"
	"github.com/jonathan/fit-analysis/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an analysis record against the canonical schema",
	Long:  "Validates a JSON analysis record against the embedded canonical schema, or against --schema when given.",
	RunE:  runValidate,
}

var (
	validateInput  string
	validateSchema string
)

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to analysis record JSON file, or - for stdin (required)")
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Path to a JSON schema file (default: embedded canonical schema)")

	if err := validateCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var err error
	switch {
	case validateSchema != "" && validateInput != "-":
		err = schemas.ValidateJSON(validateSchema, validateInput)
	case validateSchema != "":
		err = validateStdinAgainst(cmd, validateSchema)
	default:
		var data []byte
		data, err = readInput(cmd, validateInput)
		if err != nil {
			return err
		}
		err = schemas.ValidateRecordJSON(data)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintValidation(err)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// validateStdinAgainst checks a record piped on stdin against the schema file at schemaPath
func validateStdinAgainst(cmd *cobra.Command, schemaPath string) error {
	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	data, err := readInput(cmd, "-")
	if err != nil {
		return err
	}
	return schemas.ValidateJSONString(string(schema), string(data))
}
