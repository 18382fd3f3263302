package cli

import "flag"

const defaultConfigPath = "./funcgraph.toml"

type cliOptions struct {
	configPath  string
	outDir      string
	watch       bool
	ui          bool
	history     bool
	historySize int
	metricsAddr string
	verbose     bool
	version     bool
	args        []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("funcgraph", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file (optional when the default is missing)")
	fs.StringVar(&opts.outDir, "out", "", "Directory for generated artifacts (overrides output.dir)")
	fs.BoolVar(&opts.watch, "watch", false, "Re-run the analysis whenever the source file changes")
	fs.BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode (implies --watch)")
	fs.BoolVar(&opts.history, "history", false, "Print recorded runs for the source file and exit")
	fs.IntVar(&opts.historySize, "history-limit", 10, "Maximum number of runs printed by --history")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address (overrides observability.metrics_addr)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	if opts.ui {
		opts.watch = true
	}

	opts.args = fs.Args()
	return opts, nil
}
