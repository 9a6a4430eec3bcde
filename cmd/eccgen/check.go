package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "check <grammar>",
		Short:   "Load a grammar and report its format/map rules and roots",
		Example: `  eccgen check grammar.ecc`,
		Args:    cobra.ExactArgs(1),
		RunE:    runCheck,
	}
	rootCmd.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	grmPath := args[0]
	g, err := loadGrammarFile(grmPath)
	if err != nil {
		return fmt.Errorf("loading grammar %s: %w", grmPath, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: ok\n", grmPath)
	fmt.Fprintf(out, "  formats:      %d\n", len(g.Formats))
	fmt.Fprintf(out, "  maps:         %d\n", len(g.Maps))
	fmt.Fprintf(out, "  deletions:    %d\n", len(g.Deletions))
	fmt.Fprintf(out, "  substitutions: %d\n", len(g.Substitutions))

	if len(g.Origins) == 0 {
		fmt.Fprintln(out, "  roots:        all formats are eligible roots")
	} else {
		fmt.Fprintf(out, "  roots:        %v\n", g.Origins)
	}

	for _, rule := range g.Formats {
		_, mapped := g.Map(rule.Symbol)
		status := "mapped"
		if !mapped {
			status = "UNMAPPED"
		}
		fmt.Fprintf(out, "  %-20s %d alternative(s), %s\n", rule.Symbol, len(rule.Alts), status)
	}
	return nil
}
