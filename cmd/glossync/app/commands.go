package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/agentstation/glossync"
	"github.com/agentstation/glossync/pkg/document"
	"github.com/agentstation/glossync/pkg/errors"
	"github.com/agentstation/glossync/pkg/glossary"
	"github.com/agentstation/glossync/pkg/logging"
	"github.com/agentstation/glossync/pkg/merge"
)

// updateFlags holds the flags shared by update and preview.
type updateFlags struct {
	configID       string
	files          []string
	dirs           []string
	strategy       string
	skipValidation bool
	permissive     bool
}

func (f *updateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configID, "config-id", "", "configuration ID to update (required)")
	cmd.Flags().StringArrayVarP(&f.files, "file", "f", nil, "glossary file to process (repeatable)")
	cmd.Flags().StringArrayVarP(&f.dirs, "dir", "d", nil, "directory to search for glossary files (repeatable)")
	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "merge", "merge strategy: merge or overwrite")
	cmd.Flags().BoolVar(&f.skipValidation, "skip-validation", false, "skip configuration validation around the merge")
	cmd.Flags().BoolVar(&f.permissive, "permissive", false, "use permissive term validation (trim only)")
	_ = cmd.MarkFlagRequired("config-id")
}

func (f *updateFlags) options() ([]glossync.Option, error) {
	strategy, err := merge.ParseStrategy(f.strategy)
	if err != nil {
		return nil, err
	}

	opts := []glossync.Option{
		glossync.WithStrategy(strategy),
		glossync.WithSkipValidation(f.skipValidation),
	}
	if f.permissive {
		opts = append(opts, glossync.WithProfile(glossary.PermissiveProfile()))
	}
	return opts, nil
}

func (f *updateFlags) paths() []string {
	return append(append([]string{}, f.files...), f.dirs...)
}

// NewUpdateCommand creates the update command.
func (a *App) NewUpdateCommand() *cobra.Command {
	flags := &updateFlags{}
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Merge glossary terms from files into a configuration",
		Long: `Update extracts terms from the given files and directories, merges them
into the configuration's glossary, and writes the configuration back.
The write is skipped when the merge changes nothing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			opts = append(opts, glossync.WithDryRun(dryRun))

			updater, err := a.Updater(opts...)
			if err != nil {
				return err
			}

			ctx := logging.WithLogger(cmd.Context(), a.logger)
			result, err := updater.Update(ctx, flags.configID, flags.paths())
			if err != nil {
				return err
			}
			return a.printResult(cmd, result)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "process and merge but do not write the configuration")
	return cmd
}

// NewPreviewCommand creates the preview command.
func (a *App) NewPreviewCommand() *cobra.Command {
	flags := &updateFlags{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show what an update would do without writing anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}

			updater, err := a.Updater(opts...)
			if err != nil {
				return err
			}

			ctx := logging.WithLogger(cmd.Context(), a.logger)
			result, err := updater.Preview(ctx, flags.configID, flags.paths())
			if err != nil {
				return err
			}
			return a.printResult(cmd, result)
		},
	}

	flags.register(cmd)
	return cmd
}

// NewInfoCommand creates the info command.
func (a *App) NewInfoCommand() *cobra.Command {
	var configID string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Inspect a configuration's current glossary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			updater, err := a.Updater()
			if err != nil {
				return err
			}

			ctx := logging.WithLogger(cmd.Context(), a.logger)
			info, err := updater.Info(ctx, configID)
			if err != nil {
				return err
			}

			if a.config.Output == "json" {
				return printJSON(cmd, info)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration: %s\n", info.ConfigID)
			fmt.Fprintf(out, "Shape:         %s\n", info.Shape)
			fmt.Fprintf(out, "Entities:      %d\n", info.TotalEntities)
			fmt.Fprintf(out, "Resources:     %d\n", info.TotalResources)
			if info.GlossaryFound {
				fmt.Fprintf(out, "Glossary:      %d terms in %d resource(s)\n", info.TermCount, len(info.ResourceRefs))
			} else {
				fmt.Fprintln(out, "Glossary:      not present")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configID, "config-id", "", "configuration ID to inspect (required)")
	_ = cmd.MarkFlagRequired("config-id")
	return cmd
}

// NewValidateCommand creates the validate command.
func (a *App) NewValidateCommand() *cobra.Command {
	var schemaFile string

	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Validate a local configuration document",
		Long: `Validate checks a configuration document (JSON or YAML) against the
structural rules: required containers, unique ids, and resolvable
resource references. With --schema, a JSON Schema file is used instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.WrapIO("read", args[0], err)
			}

			var doc document.Document
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return errors.WrapParse("yaml", args[0], err)
			}

			var validator document.Validator
			if schemaFile != "" {
				schema, err := os.ReadFile(schemaFile)
				if err != nil {
					return errors.WrapIO("read", schemaFile, err)
				}
				validator, err = document.NewSchemaValidator(schema)
				if err != nil {
					return err
				}
			} else {
				validator = document.NewStructuralValidator(document.Detect(doc))
			}

			ok, errs := validator.Validate(doc)
			out := cmd.OutOrStdout()
			if ok {
				fmt.Fprintf(out, "%s is valid\n", args[0])
				return nil
			}
			for _, e := range errs {
				fmt.Fprintf(out, "  - %s\n", e)
			}
			return errors.NewStructuralError("input", errs)
		},
	}

	cmd.Flags().StringVar(&schemaFile, "schema", "", "JSON Schema file to validate against")
	return cmd
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "glossync %s (commit %s, built %s)\n", a.version, a.commit, a.date)
		},
	}
}

// printResult renders an update or preview result.
func (a *App) printResult(cmd *cobra.Command, result *glossync.Result) error {
	if a.config.Output == "json" {
		return printJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	stats := result.Stats

	fmt.Fprintf(out, "Configuration:   %s\n", result.ConfigID)
	fmt.Fprintf(out, "Terms extracted: %d\n", result.TermsExtracted)
	fmt.Fprintf(out, "Strategy:        %s\n", stats.Strategy)
	fmt.Fprintf(out, "Terms:           %d -> %d (added %d, updated %d, removed %d)\n",
		stats.TermsBefore, stats.TermsAfter, stats.TermsAdded, stats.TermsUpdated, stats.TermsRemoved)
	if result.Report.RejectedCount > 0 {
		fmt.Fprintf(out, "Rejected:        %d record(s)\n", result.Report.RejectedCount)
	}
	if result.Current != nil {
		fmt.Fprintf(out, "Stored now:      %d terms in %d resource(s)\n",
			result.Current.TermCount, len(result.Current.ResourceRefs))
	}

	switch {
	case result.DryRun:
		fmt.Fprintln(out, "Mode:            dry run (no changes made)")
	case result.Skipped:
		fmt.Fprintln(out, "Mode:            no changes; write skipped")
	case result.Written:
		fmt.Fprintln(out, "Mode:            configuration updated")
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
