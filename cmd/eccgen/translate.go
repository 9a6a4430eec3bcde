package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arj0019/eccgen/generator"
	"github.com/arj0019/eccgen/grammar"
	"github.com/arj0019/eccgen/optimizer"
	"github.com/arj0019/eccgen/parser"
)

var translateFlags = struct {
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "translate <source-grammar> <target-grammar> <source>",
		Short:   "Translate a source-language program into the target language",
		Example: `  eccgen translate src.ecc tgt.ecc prog.src -o prog.tgt`,
		Args:    cobra.ExactArgs(3),
		RunE:    runTranslate,
	}
	translateFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(cmd)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	srcGrmPath, tgtGrmPath, srcPath := args[0], args[1], args[2]

	srcGrm, err := loadGrammarFile(srcGrmPath)
	if err != nil {
		return fmt.Errorf("loading source grammar %s: %w", srcGrmPath, err)
	}
	tgtGrm, err := loadGrammarFile(tgtGrmPath)
	if err != nil {
		return fmt.Errorf("loading target grammar %s: %w", tgtGrmPath, err)
	}
	source, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading source %s: %w", srcPath, err)
	}

	ctx := context.Background()

	iv, err := parser.Parse(ctx, srcGrm, string(source), log)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", srcPath, err)
	}

	iv = optimizer.Optimize(iv)

	out, err := generator.Generate(ctx, tgtGrm, iv, log)
	if err != nil {
		return fmt.Errorf("generating: %w", err)
	}

	if *translateFlags.output == "" {
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}
	return os.WriteFile(*translateFlags.output, []byte(out), 0o644)
}

func loadGrammarFile(path string) (*grammar.Grammar, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return grammar.Load(string(text))
}
