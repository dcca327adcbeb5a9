package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/catalog"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/cli"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/client"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/config"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/runner"
)

type rootFlags struct {
	configFile string
	ethRPC     string
	bscRPC     string
	ethWS      string
	bscWS      string
	count      int
	output     string
	methods    string
	basic      bool
	extended   bool
	logLevel   string
	mode       string
	workers    int
	exhaustive bool
	strictIDs  bool
	influx     bool
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&rootFlags{})
}

func newRootCmdWith(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eth-rpc-check",
		Short: "Measure latency and success rate of Ethereum-style JSON-RPC endpoints",
		Long: `Calls a catalog of JSON-RPC methods against HTTP and WebSocket endpoints,
repeats each call, and reports per-method latency and success statistics
to the console, a CSV file and a JSON report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, f)
		},
	}

	registerConfigFlags(cmd.PersistentFlags(), f)

	flags := cmd.Flags()
	flags.StringVarP(&f.methods, "methods", "m", "", "comma-separated methods to test (default: all)")
	flags.BoolVar(&f.basic, "basic", false, "test only the basic method set")
	flags.BoolVar(&f.extended, "extended", false, "test the extended method set")
	flags.StringVar(&f.mode, "mode", config.DefaultMode, "run methods per endpoint: sequential or concurrent")
	flags.IntVar(&f.workers, "workers", config.DefaultWorkers, "concurrent method workers per endpoint")
	flags.BoolVar(&f.exhaustive, "exhaustive", false, "never cut methods or endpoints short after a failed first probe")
	flags.BoolVar(&f.strictIDs, "strict-ids", false, "stamp unique request ids on WebSocket calls and ignore mismatched replies")
	flags.BoolVar(&f.influx, "influx", false, "export results to InfluxDB")
	cmd.MarkFlagsMutuallyExclusive("methods", "basic", "extended")

	cmd.AddCommand(newConfigCmd(f))
	cmd.AddCommand(newMethodsCmd())
	return cmd
}

func registerConfigFlags(flags *pflag.FlagSet, f *rootFlags) {
	flags.StringVar(&f.configFile, "config", "", fmt.Sprintf("config file, .json or .yaml (default %q when present)", config.DefaultConfigFile))
	flags.StringVarP(&f.ethRPC, "eth-rpc", "e", config.DefaultEthRPC, "Ethereum HTTP endpoint")
	flags.StringVarP(&f.bscRPC, "bsc-rpc", "b", config.DefaultBscRPC, "BSC HTTP endpoint")
	flags.StringVar(&f.ethWS, "eth-ws", "", "Ethereum WebSocket endpoint")
	flags.StringVar(&f.bscWS, "bsc-ws", "", "BSC WebSocket endpoint")
	flags.IntVarP(&f.count, "count", "c", config.DefaultRepetitions, "calls per method")
	flags.StringVarP(&f.output, "output", "o", config.DefaultOutput, "CSV output file")
	flags.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "log level: "+strings.Join(cli.LogLevels, ", "))
}

// applyFlags overrides cfg with the flags the user actually set, so file and
// environment values survive flag defaults.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f *rootFlags) {
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}

	if changed("eth-rpc") {
		cfg.EthRPC = f.ethRPC
	}
	if changed("bsc-rpc") {
		cfg.BscRPC = f.bscRPC
	}
	if changed("eth-ws") {
		cfg.EthWS = f.ethWS
	}
	if changed("bsc-ws") {
		cfg.BscWS = f.bscWS
	}
	if changed("count") {
		cfg.Repetitions = f.count
	}
	if changed("output") {
		cfg.Output = f.output
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("methods") {
		cfg.Methods = f.methods
		cfg.MethodSet = ""
	}
	if changed("basic") && f.basic {
		cfg.MethodSet = string(catalog.SetBasic)
		cfg.Methods = ""
	}
	if changed("extended") && f.extended {
		cfg.MethodSet = string(catalog.SetExtended)
		cfg.Methods = ""
	}
	if changed("mode") {
		cfg.Mode = f.mode
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("exhaustive") {
		cfg.Exhaustive = f.exhaustive
	}
	if changed("strict-ids") {
		cfg.StrictIDs = f.strictIDs
	}
	if changed("influx") {
		cfg.Influx.Enabled = f.influx
	}
}

func loadConfig(cmd *cobra.Command, f *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlags(cmd, cfg, f)
	if err = cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCheck(cmd *cobra.Command, f *rootFlags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	logger, err := cli.NewLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	endpoints := cfg.ResolveEndpoints()
	interactive := cli.IsInteractive()

	if interactive && cmd.Flags().NFlag() == 0 {
		cli.PrintBanner()
		sel, err := cli.PromptSelection(endpoints, catalog.Names(catalog.All()), cfg.Repetitions)
		if err != nil {
			return err
		}
		applySelection(cfg, sel)
		if err = cfg.Finalize(); err != nil {
			return err
		}
		endpoints = filterEndpoints(endpoints, sel.Endpoints)
	} else {
		cli.Header("eth-rpc-check")
	}

	methods, unknown, err := cfg.ResolveMethods()
	if len(unknown) > 0 {
		cli.Warnf("Unknown methods ignored: %s", strings.Join(unknown, ", "))
	}
	if err != nil {
		return err
	}

	_, err = runner.New(cfg, endpoints, methods, logger, runner.WithAnimation(interactive)).Run(cmd.Context())
	return err
}

func applySelection(cfg *config.Config, sel *cli.Selection) {
	cfg.Repetitions = sel.Repetitions
	if sel.MethodSet == "custom" {
		cfg.Methods = strings.Join(sel.Methods, ",")
		cfg.MethodSet = ""
	} else {
		cfg.MethodSet = sel.MethodSet
		cfg.Methods = ""
	}
	if sel.Concurrent {
		cfg.Mode = "concurrent"
	}
}

func filterEndpoints(endpoints []client.Endpoint, names []string) []client.Endpoint {
	out := make([]client.Endpoint, 0, len(names))
	for _, ep := range endpoints {
		if slices.Contains(names, ep.Name) {
			out = append(out, ep)
		}
	}
	return out
}
