package rvsim

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dark-riscv/rvsim/internal/asm"
	"github.com/dark-riscv/rvsim/internal/debugview"
	"github.com/dark-riscv/rvsim/internal/link"
	"github.com/dark-riscv/rvsim/internal/rtconfig"
	"github.com/dark-riscv/rvsim/internal/vm"
)

// Exit codes, one per failure class, the same os.Exit(N) convention the
// teacher's cmd/cpu/exec.go uses.
const (
	exitOK = iota
	exitParseError
	exitLinkError
	exitMemoryError
	exitFault
)

var (
	flagTimeout       int64
	flagStack         uint32
	flagStorage       uint32
	flagPredictor     bool
	flagPredictorBits uint
	flagDetail        bool
	flagDetailFormat  string
	flagSilent        bool
	flagDebug         bool
)

var runCmd = &cobra.Command{
	Use:   "run <files...>",
	Short: "Assemble, link and run one or more RV32IM assembly files",
	Args:  cobra.MinimumNArgs(1),
	Run:   runRun,
}

func init() {
	runCmd.Flags().Int64Var(&flagTimeout, "timeout", 0, "maximum interpreter iterations (0 = use config/default)")
	runCmd.Flags().Uint32Var(&flagStack, "stack", 0, "stack size in bytes (0 = use config/default)")
	runCmd.Flags().Uint32Var(&flagStorage, "storage", 0, "total heap+stack storage budget in bytes (0 = use config/default)")
	runCmd.Flags().BoolVar(&flagPredictor, "predictor", false, "enable the branch predictor")
	runCmd.Flags().UintVar(&flagPredictorBits, "predictor-bits", 0, "predictor table size as a power of two (0 = default)")
	runCmd.Flags().BoolVar(&flagDetail, "detail", false, "print a per-opcode execution breakdown")
	runCmd.Flags().StringVar(&flagDetailFormat, "detail-format", "", "detail report format: text or yaml")
	runCmd.Flags().BoolVar(&flagSilent, "silent", false, "suppress the \"Program returned\" summary")
	runCmd.Flags().BoolVar(&flagDebug, "debug", false, "open the read-only status view once the run finishes")

	viper.BindPFlag("timeout", runCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("stack", runCmd.Flags().Lookup("stack"))
	viper.BindPFlag("storage", runCmd.Flags().Lookup("storage"))
	viper.BindPFlag("predictor", runCmd.Flags().Lookup("predictor"))
	viper.BindPFlag("predictor_bits", runCmd.Flags().Lookup("predictor-bits"))
	viper.BindPFlag("detail", runCmd.Flags().Lookup("detail"))
	viper.BindPFlag("detail_format", runCmd.Flags().Lookup("detail-format"))
	viper.BindPFlag("silent", runCmd.Flags().Lookup("silent"))
	viper.BindPFlag("debug", runCmd.Flags().Lookup("debug"))
}

func runRun(cmd *cobra.Command, args []string) {
	cfg, err := rtconfig.Load(viper.GetViper())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading configuration: %v\n", err)
		os.Exit(exitLinkError)
	}
	// viper.Unmarshal also sees the zero default of every bound flag that
	// was not set, so a field still at 0 falls back to rtconfig.Default()
	// here. Flags explicitly set on the command line then win even over a
	// non-zero config/env value.
	def := rtconfig.Default()
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Stack == 0 {
		cfg.Stack = def.Stack
	}
	if cfg.Storage == 0 {
		cfg.Storage = def.Storage
	}
	if flagTimeout != 0 {
		cfg.Timeout = flagTimeout
	}
	if flagStack != 0 {
		cfg.Stack = flagStack
	}
	if flagStorage != 0 {
		cfg.Storage = flagStorage
	}
	if flagDetailFormat != "" {
		cfg.DetailFormat = flagDetailFormat
	}
	cfg.Predictor = cfg.Predictor || flagPredictor
	cfg.Detail = cfg.Detail || flagDetail
	cfg.Silent = cfg.Silent || flagSilent
	cfg.Debug = cfg.Debug || flagDebug
	if flagPredictorBits != 0 {
		cfg.PredictorBits = flagPredictorBits
	}

	logger := newLogger(cfg.Debug)

	files := make([]*asm.Result, 0, len(args))
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot open %s: %v\n", path, err)
			os.Exit(exitParseError)
		}
		result, err := asm.NewParser(path, logger).Parse(f)
		f.Close()
		if err != nil {
			reportParseError(path, err)
			os.Exit(exitParseError)
		}
		files = append(files, result)
	}

	layout, err := link.Link(files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "link error: %v\n", err)
		os.Exit(exitLinkError)
	}

	device := vm.NewDevice(os.Stdin, os.Stdout, cfg.PredictorBits, cfg.Predictor)
	machine, err := vm.NewMachine(layout, cfg.Stack, cfg.Storage, device)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot build machine: %v\n", err)
		os.Exit(exitMemoryError)
	}

	a0, runErr := machine.Run(cfg.Timeout)

	if cfg.Debug {
		// The status view is read-only and shown once the run has
		// settled, so there's no need to race it against Step.
		view := debugview.New()
		view.Refresh(machine)
		if err := view.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "debug view error: %v\n", err)
		}
	}

	if err := runErr; err != nil {
		var fault *vm.Fault
		if errors.As(err, &fault) {
			fmt.Fprintln(os.Stderr, fault.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitFault)
	}

	if cfg.Detail {
		printDetail(device, cfg.DetailFormat)
	}
	if !cfg.Silent {
		fmt.Printf("Program returned: %d\n", int32(a0))
	}
	os.Exit(exitOK)
}

func reportParseError(path string, err error) {
	var syntaxErr *asm.SyntaxError
	if errors.As(err, &syntaxErr) {
		fmt.Fprint(os.Stderr, syntaxErr.Pretty(!color.NoColor))
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
}

func printDetail(device *vm.Device, format string) {
	if format == "yaml" {
		data, err := yaml.Marshal(detailReport{
			IParse:   device.IParse,
			Branches: device.Branches,
			BPFailed: device.BPFailed,
		})
		if err == nil {
			os.Stdout.Write(data)
		}
		return
	}
	device.PrintDetails(os.Stdout, !color.NoColor)
}

type detailReport struct {
	IParse   uint64 `yaml:"iparse"`
	Branches uint64 `yaml:"branches"`
	BPFailed uint64 `yaml:"bp_failed"`
}
