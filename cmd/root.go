package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/deepspace-sim/deepspace-sim/sim"
	"github.com/deepspace-sim/deepspace-sim/sim/metrics"
	"github.com/deepspace-sim/deepspace-sim/sim/trace"
)

var (
	// CLI flags for the run command
	missionPath string  // Mission YAML file
	frames      int     // Number of frames to execute
	frameStep   float64 // Simulated seconds per frame
	seed        int64   // Overrides the mission seed when set
	logLevel    string  // Log verbosity level
	traceLevel  string  // Event trace level
	metricsAddr string  // Prometheus listen address; empty disables
	clockMode   string  // wall or frame
)

// validClockModes is the set of recognized --clock values.
var validClockModes = map[string]bool{"wall": true, "frame": true}

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "deepspace-sim",
	Short: "Frame-driven space combat simulation kernel",
}

// runCmd executes a mission using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a mission",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		if missionPath == "" {
			logrus.Fatalf("Mission file not provided. Exiting simulation.")
		}
		if !validClockModes[clockMode] {
			logrus.Fatalf("Invalid clock mode %q; valid options: wall, frame", clockMode)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level %q; valid options: none, events", traceLevel)
		}
		if frames <= 0 || frameStep <= 0 {
			logrus.Fatalf("--frames and --dt must be positive")
		}

		m, err := sim.LoadMissionFile(missionPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		catalog, err := m.BuildCatalog()
		if err != nil {
			logrus.Fatalf("mission %q: %v", m.Name, err)
		}
		defer catalog.Close()

		missionSeed := m.Seed
		if cmd.Flags().Changed("seed") {
			missionSeed = seed
		}

		var clock sim.Clock = sim.WallClock{}
		var manual *sim.ManualClock
		if clockMode == "frame" {
			manual = sim.NewManualClock(time.Unix(0, 0))
			clock = manual
		}

		cfg := sim.Config{
			Catalog: catalog,
			Seed:    missionSeed,
			Clock:   clock,
			Trace:   trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(traceLevel)}),
		}

		var metricsSrv *http.Server
		if metricsAddr != "" {
			collector, err := metrics.NewCollector(prometheus.NewRegistry())
			if err != nil {
				logrus.Fatalf("metrics: %v", err)
			}
			cfg.Recorder = collector
			metricsSrv = serveMetrics(metricsAddr, collector)
		}

		logrus.Infof("Starting mission %q: seed=%d frames=%d dt=%.4fs clock=%s", m.Name, missionSeed, frames, frameStep, clockMode)
		startTime := time.Now()

		s := sim.NewSim(cfg)
		if err := s.LoadMission(m); err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := s.ExecMission(); err != nil {
			logrus.Fatalf("%v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		runFrames(ctx, s, manual)

		res, err := s.CommitMission()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		printResult(os.Stdout, res, time.Since(startTime))
		if cfg.Trace.Enabled() {
			printTraceSummary(os.Stdout, trace.Summarize(cfg.Trace))
		}
		s.UnloadMission()

		if metricsSrv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		logrus.Info("Simulation complete.")
	},
}

// runFrames steps the simulation. With a manual clock frames run back to
// back and the clock advances by the frame step; otherwise frames are paced
// in real time.
func runFrames(ctx context.Context, s *sim.Sim, manual *sim.ManualClock) {
	step := time.Duration(frameStep * float64(time.Second))
	var ticker *time.Ticker
	if manual == nil {
		ticker = time.NewTicker(step)
		defer ticker.Stop()
	}
	for i := 0; i < frames; i++ {
		if manual != nil {
			manual.Advance(step)
		} else {
			select {
			case <-ctx.Done():
				logrus.Warnf("interrupted after %d frames", i)
				return
			case <-ticker.C:
			}
		}
		if ctx.Err() != nil {
			logrus.Warnf("interrupted after %d frames", i)
			return
		}
		s.ExecFrame(frameStep)
	}
}

func serveMetrics(addr string, collector *metrics.Collector) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Warnf("metrics server exited: %v", err)
		}
	}()

	logrus.Infof("serving Prometheus metrics on %s", addr)
	return srv
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&missionPath, "mission", "", "Path to the mission YAML file")
	runCmd.Flags().IntVar(&frames, "frames", 600, "Number of frames to execute")
	runCmd.Flags().Float64Var(&frameStep, "dt", 1.0/30, "Simulated seconds per frame")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the simulation RNG (overrides the mission seed)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Event trace level (none, events)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	runCmd.Flags().StringVar(&clockMode, "clock", "frame", "Turret clock: wall (real time, paced frames) or frame (advances with frames)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
