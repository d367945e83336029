// Package rvsim is the cobra command tree for the assembler/linker/
// interpreter toolchain: a root command plus the "run" leaf, mirroring
// the teacher's cmd/root.go + cmd/cpu/exec.go split between command
// wiring and the actual work.
package rvsim

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/slog-multi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// RootCmd is the "rvsim" entry point; Execute is called once from main.
var RootCmd = &cobra.Command{
	Use:   "rvsim",
	Short: "An assembler, linker and interpreter for a RV32IM subset",
	Long: `rvsim assembles, links and interprets RISC-V RV32IM programs.

Point it at one or more assembly files and it runs them through the full
pipeline: parse, link, then interpret the resulting image.`,
}

// Execute adds every child command and runs the tree. Called once from
// main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(runCmd)
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.rvsim.yaml)")
	cobra.OnInitialize(initConfig)
}

// initConfig reads a config file and environment variables, the same
// flag > env > config-file > default precedence the teacher's own
// initConfig establishes.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rvsim")
	}

	viper.SetEnvPrefix("RVSIM")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger fans text out to stderr always, and, when debugLog is true,
// attaches a second structured handler — the same slog-multi combinator
// the teacher imports, rather than a second ad hoc logging path.
func newLogger(debugLog bool) *slog.Logger {
	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	if !debugLog {
		return slog.New(textHandler)
	}
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(slogmulti.Fanout(textHandler, jsonHandler))
}
