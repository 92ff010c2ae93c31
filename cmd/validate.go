package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/deepspace-sim/deepspace-sim/sim"
)

var validatePath string

// validateCmd loads a mission and its catalog without running it
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a mission file and its design catalog",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		if validatePath == "" {
			logrus.Fatalf("Mission file not provided.")
		}
		if err := validateMission(validatePath); err != nil {
			logrus.Fatalf("%v", err)
		}
		fmt.Fprintf(os.Stdout, "%s: ok\n", validatePath)
	},
}

// validateMission parses the mission, checks its cross references, builds
// its catalog and loads it into a scratch Sim.
func validateMission(path string) error {
	m, err := sim.LoadMissionFile(path)
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("mission %q: %w", m.Name, err)
	}
	catalog, err := m.BuildCatalog()
	if err != nil {
		return fmt.Errorf("mission %q: %w", m.Name, err)
	}
	defer catalog.Close()

	s := sim.NewSim(sim.Config{Catalog: catalog, Seed: m.Seed, Clock: sim.NewManualClock(time.Unix(0, 0))})
	if err := s.LoadMission(m); err != nil {
		return err
	}
	s.UnloadMission()
	return nil
}

func init() {
	validateCmd.Flags().StringVar(&validatePath, "mission", "", "Path to the mission YAML file")
	rootCmd.AddCommand(validateCmd)
}
