/*
Copyright 2024 The Taibai Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"k8s.io/klog/v2"

	"github.com/zhongpeinan/taibai-api/pkg/harness"
	"github.com/zhongpeinan/taibai-api/pkg/pipeline"
)

func main() {
	klog.InitFlags(flag.CommandLine)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)

	command := newHarnessCommand()
	if err := command.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type harnessOptions struct {
	file    string
	pretty  bool
	noColor bool
}

// readDocument returns the input document from --file, or stdin when no file
// was given.
func (o *harnessOptions) readDocument() ([]byte, error) {
	if o.file != "" {
		return os.ReadFile(o.file)
	}
	return io.ReadAll(os.Stdin)
}

func (o *harnessOptions) addFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&o.file, "file", "f", "", "Read the document from this file instead of stdin")
	flags.BoolVar(&o.pretty, "pretty", false, "Render diagnostics for humans instead of emitting JSON")
	flags.BoolVar(&o.noColor, "no-color", false, "Disable colored output")
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newHarnessCommand() *cobra.Command {
	opts := &harnessOptions{}

	cmd := &cobra.Command{
		Use:   "harness",
		Short: "Run versioned documents through the object pipeline",
		Long: `The harness decodes a serialized object, applies its version's defaults,
converts it through the hub representation, validates it and encodes the
storage form. Kinds are addressed as {group}/{version}/{kind}, with the empty
group spelled "core".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}
	opts.addFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newListCommand(),
		newDefaultCommand(opts),
		newConvertCommand(opts),
		newValidateCommand(opts),
		newPipelineCommand(opts),
	)
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registered resource identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := harness.New()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), h.ListIdentities())
		},
	}
}

func newDefaultCommand(opts *harnessOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "default GVK",
		Short: "Apply the registered defaults to a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := harness.New()
			if err != nil {
				return err
			}
			doc, err := opts.readDocument()
			if err != nil {
				return err
			}
			res, err := h.ApplyDefaults(args[0], doc)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newConvertCommand(opts *harnessOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "convert GVK",
		Short: "Convert a document to its hub representation and back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := harness.New()
			if err != nil {
				return err
			}
			doc, err := opts.readDocument()
			if err != nil {
				return err
			}
			res, err := h.Convert(args[0], doc)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newValidateCommand(opts *harnessOptions) *cobra.Command {
	var (
		update  bool
		oldFile string
	)
	cmd := &cobra.Command{
		Use:   "validate GVK",
		Short: "Validate a document against its hub-form rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := harness.New()
			if err != nil {
				return err
			}
			doc, err := opts.readDocument()
			if err != nil {
				return err
			}
			ctx := harness.UpdateContext{IsUpdate: update}
			if update {
				if oldFile == "" {
					return fmt.Errorf("--update requires --old")
				}
				if ctx.Old, err = os.ReadFile(oldFile); err != nil {
					return err
				}
			}
			res, err := h.Validate(args[0], doc, ctx)
			if err != nil {
				return err
			}
			if opts.pretty {
				renderValidation(cmd.OutOrStdout(), res)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&update, "update", false, "Validate as an update against an existing object")
	cmd.Flags().StringVar(&oldFile, "old", "", "File holding the existing object's document")
	return cmd
}

func newPipelineCommand(opts *harnessOptions) *cobra.Command {
	var encodeInvalid bool
	cmd := &cobra.Command{
		Use:   "pipeline GVK",
		Short: "Run a document through the full pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pipeOpts []pipeline.Option
			if encodeInvalid {
				pipeOpts = append(pipeOpts, pipeline.WithEncodeInvalid())
			}
			h, err := harness.New(pipeOpts...)
			if err != nil {
				return err
			}
			doc, err := opts.readDocument()
			if err != nil {
				return err
			}
			res, err := h.RunPipeline(args[0], doc)
			if err != nil {
				return err
			}
			if opts.pretty {
				renderPipeline(cmd.OutOrStdout(), res)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&encodeInvalid, "encode-invalid", false, "Encode the storage form even when validation fails")
	return cmd
}

func renderValidation(w io.Writer, res *harness.ValidationResult) {
	if res.Valid {
		fmt.Fprintf(w, "%s %s\n", color.GreenString("VALID"), res.GVK)
		return
	}
	fmt.Fprintf(w, "%s %s\n", color.RedString("INVALID"), res.GVK)
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  %s %s: %s\n", color.YellowString(e.Type), e.Field, e.Message)
	}
}

func renderPipeline(w io.Writer, res *harness.PipelineResult) {
	status := color.GreenString("OK")
	if !res.Success {
		status = color.RedString("STOPPED")
	}
	fmt.Fprintf(w, "%s %s (stage: %s)\n", status, res.GVK, res.Stage)
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  %s %s: %s\n", color.YellowString(e.Type), e.Field, e.Message)
	}
	if res.StorageVersion != "" {
		fmt.Fprintf(w, "  storage version: %s\n", res.StorageVersion)
	}
}
