package main

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/shardlab/prefixnet/datarecording"
	"github.com/shardlab/prefixnet/monitoring"
	"github.com/shardlab/prefixnet/network"
	"github.com/shardlab/prefixnet/params"
	"github.com/shardlab/prefixnet/simulation"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a churn simulation",
		Long: `Run a churn simulation with the given parameters.

Parameters are resolved in order: built-in defaults, then the YAML config
file, then PREFIXNET_* environment variables, then command-line flags.

Example:
  prefixnet run --iterations 5000 --seed 7 --record`,
		RunE: runSimulation,
	}

	cmd.Flags().String("config", "", "YAML parameter file")
	cmd.Flags().Uint64("iterations", 0, "Number of ticks to simulate")
	cmd.Flags().Int64("seed", 0, "Churn generator seed")
	cmd.Flags().Int("joins", -1, "Node joins per tick")
	cmd.Flags().Int("drops", -1, "Node departures per tick")
	cmd.Flags().Bool("verbose", false, "Log benignly ignored actions")

	cmd.Flags().Bool("record", false, "Record tick statistics to SQLite")
	cmd.Flags().String("record-db", "",
		"SQLite database file for recording, without the .sqlite3 suffix")
	cmd.Flags().String("clickhouse", "",
		"Record to a ClickHouse server at host:port instead of SQLite")
	cmd.Flags().String("clickhouse-db", "default", "ClickHouse database")
	cmd.Flags().String("clickhouse-user", "default", "ClickHouse username")
	cmd.Flags().String("clickhouse-password", "", "ClickHouse password")

	cmd.Flags().Bool("monitor", false, "Serve the monitoring API")
	cmd.Flags().Int("monitor-port", 0,
		"Monitoring port, 0 picks a random port")
	cmd.Flags().Bool("browser", false,
		"Open the monitoring page in a browser")

	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	p, err := resolveParams(cmd)
	if err != nil {
		return err
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		network.Verbose = true
	}

	builder := simulation.MakeBuilder().WithParams(p)

	builder, err = configureRecording(cmd, builder)
	if err != nil {
		return err
	}

	if useMonitor, _ := cmd.Flags().GetBool("monitor"); useMonitor {
		builder = builder.WithMonitor(buildMonitor(cmd))
	}

	s, err := builder.Build()
	if err != nil {
		return err
	}
	defer s.Terminate()

	runErr := s.Run()
	printSummary(cmd, s)

	var fatal *network.FatalError
	if errors.As(runErr, &fatal) {
		fmt.Fprintln(cmd.ErrOrStderr(), runErr)
		atexit.Exit(2)
	}

	return runErr
}

func resolveParams(cmd *cobra.Command) (params.Params, error) {
	p := params.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := params.Load(path)
		if err != nil {
			return p, err
		}
		p = loaded
	}

	if err := p.ApplyEnv(); err != nil {
		return p, err
	}

	if cmd.Flags().Changed("iterations") {
		p.Iterations, _ = cmd.Flags().GetUint64("iterations")
	}
	if cmd.Flags().Changed("seed") {
		p.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if cmd.Flags().Changed("joins") {
		p.JoinsPerTick, _ = cmd.Flags().GetInt("joins")
	}
	if cmd.Flags().Changed("drops") {
		p.DropsPerTick, _ = cmd.Flags().GetInt("drops")
	}

	return p, p.Validate()
}

func configureRecording(
	cmd *cobra.Command, builder simulation.Builder,
) (simulation.Builder, error) {
	if addr, _ := cmd.Flags().GetString("clickhouse"); addr != "" {
		host, port, err := splitHostPort(addr)
		if err != nil {
			return builder, err
		}

		db, _ := cmd.Flags().GetString("clickhouse-db")
		user, _ := cmd.Flags().GetString("clickhouse-user")
		password, _ := cmd.Flags().GetString("clickhouse-password")

		return builder.WithRecorder(datarecording.NewClickHouseRecorder(
			host, port, db, user, password, 0)), nil
	}

	if path, _ := cmd.Flags().GetString("record-db"); path != "" {
		return builder.WithRecorder(
			datarecording.NewSQLiteRecorder(path)), nil
	}

	if record, _ := cmd.Flags().GetBool("record"); record {
		return builder.WithRecording(), nil
	}

	return builder, nil
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid clickhouse address %q: %w",
			addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid clickhouse port %q: %w",
			portStr, err)
	}

	return host, port, nil
}

func buildMonitor(cmd *cobra.Command) *monitoring.Monitor {
	m := monitoring.NewMonitor()

	if port, _ := cmd.Flags().GetInt("monitor-port"); port != 0 {
		m = m.WithPortNumber(port)
	}
	if openBrowser, _ := cmd.Flags().GetBool("browser"); openBrowser {
		m = m.WithBrowser()
	}

	return m
}

func printSummary(cmd *cobra.Command, s *simulation.Simulation) {
	last, ok := s.Stats().Last()
	if !ok {
		return
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ticks:       %d\n", last.Iteration)
	fmt.Fprintf(out, "nodes:       %d\n", last.Nodes)
	fmt.Fprintf(out, "sections:    %d (%d complete)\n",
		s.Network().NumSections(), s.Network().NumCompleteSections())
	fmt.Fprintf(out, "node age:    %s\n", s.Network().AgeAggregator())
	fmt.Fprintf(out, "section size: %s\n", s.Network().SectionSizeAggregator())
	fmt.Fprintf(out, "prefix len:  %s\n", s.Network().PrefixLenAggregator())

	var merges, splits, relocations, rejections uint64
	for _, r := range s.Stats().Records() {
		merges += r.Merges
		splits += r.Splits
		relocations += r.Relocations
		rejections += r.Rejections
	}
	fmt.Fprintf(out, "merges:      %d\n", merges)
	fmt.Fprintf(out, "splits:      %d\n", splits)
	fmt.Fprintf(out, "relocations: %d\n", relocations)
	fmt.Fprintf(out, "rejections:  %d\n", rejections)
}
