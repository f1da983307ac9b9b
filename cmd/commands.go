package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/formulabar/internal/evaluator"
	"github.com/oakwood-commons/formulabar/internal/formula"
	"github.com/oakwood-commons/formulabar/internal/limiter"
	"github.com/oakwood-commons/formulabar/internal/suggest"
	"github.com/oakwood-commons/formulabar/pkg/logger"
	"github.com/oakwood-commons/formulabar/pkg/settings"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func validateOutput(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported output %q (expected %s)", format, strings.Join(allowed, "|"))
}

func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
}

type evalResult struct {
	Formula string   `json:"formula" yaml:"formula"`
	Tokens  []string `json:"tokens" yaml:"tokens"`
	Result  string   `json:"result,omitempty" yaml:"result,omitempty"`
	Error   string   `json:"error,omitempty" yaml:"error,omitempty"`
}

func newEvalCmd(o *rootOptions) *cobra.Command {
	var output string
	c := &cobra.Command{
		Use:   "eval TOKEN...",
		Short: "Evaluate a formula once and print the result",
		Example: "  formulabar eval 3 + x\n" +
			"  formulabar eval '2 ^ 3 * y' --var y=1.5 -o json\n" +
			"  formulabar eval -- 3 - -2\n" +
			"  formulabar eval '3 - -2'\n",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output, outputText, outputJSON, outputYAML); err != nil {
				return err
			}
			lgr := *logger.FromContext(cmd.Context())
			ev, _, err := buildEvaluator(o.cfg, o.vars, lgr)
			if err != nil {
				return err
			}
			seq := parseFormula(args)
			result, evalErr := ev.Result(seq)
			if output != outputText {
				res := evalResult{Formula: evaluator.Render(seq), Tokens: seq.Displays(), Result: result}
				if evalErr != nil {
					res.Error = evaluator.ErrorPrefix + evalErr.Error()
				}
				return writeStructured(cmd.OutOrStdout(), output, res)
			}
			if evalErr != nil {
				return fmt.Errorf("%s%w", evaluator.ErrorPrefix, evalErr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
	c.Flags().StringVarP(&output, "output", "o", outputText, "output format: text|json|yaml")
	return c
}

func newSuggestCmd(o *rootOptions) *cobra.Command {
	var (
		output string
		after  string
		limit  int
	)
	c := &cobra.Command{
		Use:   "suggest QUERY",
		Short: "Query the autocomplete endpoint and print candidates",
		Long: "suggest sends one autocomplete request. With --after the candidates are\n" +
			"filtered as the bar would filter them after that formula.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output, outputText, outputJSON, outputYAML); err != nil {
				return err
			}
			lgr := logger.WithValues(logger.FromContext(cmd.Context()), logger.QueryKey, args[0])
			provider, err := buildProvider(o.cfg, *lgr)
			if err != nil {
				return err
			}
			if provider == nil {
				return errors.New("no autocomplete endpoint configured (set --endpoint or autocomplete.endpoint)")
			}
			cands, err := provider.FetchSuggestions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cands = suggest.Filter(cands, parseFormula([]string{after}))
			lim := o.cfg.Autocomplete.SuggestionLimit()
			if cmd.Flags().Changed("limit") {
				lim = limiter.Config{Limit: limit}
				if err := lim.Validate(); err != nil {
					return fmt.Errorf("--limit: %w", err)
				}
			}
			cands = limiter.Apply(lim, cands)
			lgr.V(1).Info("suggestions fetched", "count", len(cands))

			if output != outputText {
				if cands == nil {
					cands = []formula.Candidate{}
				}
				return writeStructured(cmd.OutOrStdout(), output, cands)
			}
			for _, c := range cands {
				if c.ID != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.Name, c.ID)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), c.Name)
				}
			}
			return nil
		},
	}
	c.Flags().StringVarP(&output, "output", "o", outputText, "output format: text|json|yaml")
	c.Flags().StringVar(&after, "after", "", "formula already entered, e.g. '3 +'")
	c.Flags().IntVar(&limit, "limit", 0, "maximum number of candidates (default from config)")
	return c
}

func newConfigCmd(o *rootOptions) *cobra.Command {
	var output string
	c := &cobra.Command{
		Use:   "config",
		Short: "Show the merged configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output, outputJSON, outputYAML); err != nil {
				return err
			}
			if run, ok := settings.FromContext(cmd.Context()); ok && run.ConfigPath != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "# config: %s\n", run.ConfigPath)
			}
			return writeStructured(cmd.OutOrStdout(), output, o.cfg)
		},
	}
	c.Flags().StringVarP(&output, "output", "o", outputYAML, "output format: yaml|json")
	return c
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print formulabar version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
			return nil
		},
	}
}

func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, go %s)",
		settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}
