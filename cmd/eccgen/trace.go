package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arj0019/eccgen/parser"
)

func init() {
	cmd := &cobra.Command{
		Use:     "trace <source-grammar> <source>",
		Short:   "Parse a source program and dump its reduced AST and IR",
		Example: `  eccgen trace src.ecc prog.src`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTrace,
	}
	rootCmd.AddCommand(cmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	grmPath, srcPath := args[0], args[1]

	g, err := loadGrammarFile(grmPath)
	if err != nil {
		return fmt.Errorf("loading grammar %s: %w", grmPath, err)
	}
	source, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading source %s: %w", srcPath, err)
	}

	ctx := context.Background()

	ast, err := parser.ParseAST(ctx, g, string(source), log)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", srcPath, err)
	}
	iv, err := parser.Translate(g, ast)
	if err != nil {
		return fmt.Errorf("translating %s: %w", srcPath, err)
	}

	astJSON, err := json.MarshalIndent(ast, "", "  ")
	if err != nil {
		return err
	}
	irJSON, err := json.MarshalIndent(iv, "", "  ")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "ast:")
	fmt.Fprintln(out, string(astJSON))
	fmt.Fprintln(out, "ir:")
	fmt.Fprintln(out, string(irJSON))
	return nil
}
