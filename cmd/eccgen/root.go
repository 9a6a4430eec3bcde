package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var rootFlags = struct {
	verbose *bool
}{}

var log *zap.SugaredLogger

var rootCmd = &cobra.Command{
	Use:   "eccgen",
	Short: "Compile a source program into an equivalent target program",
	Long: `eccgen is a compiler generator: given a source grammar, a target
grammar, and a program written in the source language, it produces an
equivalent program in the target language.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
}

func init() {
	rootFlags.verbose = rootCmd.PersistentFlags().Bool("verbose", false, "enable debug-level trace logging")

	viper.SetConfigName(".eccgen")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
	viper.SetEnvPrefix("ECCGEN")
	viper.AutomaticEnv()
	// Optional: no subcommand requires a config file to exist.
	_ = viper.ReadInConfig()
}

func initLogger() error {
	level := zap.InfoLevel
	if *rootFlags.verbose || viper.GetBool("verbose") {
		level = zap.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	log = l.Sugar()
	return nil
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
