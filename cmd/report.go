package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	sim "github.com/deepspace-sim/deepspace-sim/sim"
	"github.com/deepspace-sim/deepspace-sim/sim/trace"
)

// printResult writes the mission outcome in a fixed-width table.
func printResult(w io.Writer, res *sim.MissionResult, wall time.Duration) {
	fmt.Fprintln(w, "=== Mission Results ===")
	fmt.Fprintf(w, "Mission              : %s\n", res.Name)
	fmt.Fprintf(w, "Mission ID           : %s\n", res.ID)
	fmt.Fprintf(w, "Frames               : %d\n", res.Frames)
	fmt.Fprintf(w, "Simulated Time       : %.2f s\n", res.SimSeconds)
	fmt.Fprintf(w, "Wall Time            : %.3f s\n", wall.Seconds())

	fmt.Fprintln(w, "--- Ships ---")
	fmt.Fprintf(w, "%-20s %4s %6s %5s %5s %5s %8s %s\n", "Name", "Team", "Shots", "Hits", "Kills", "Jumps", "Damage", "Status")
	for _, st := range res.Ships {
		status := "alive"
		if st.Destroyed {
			status = "destroyed"
		}
		fmt.Fprintf(w, "%-20s %4d %6d %5d %5d %5d %8.1f %s\n",
			st.Name, st.Team, st.ShotsFired, st.Hits, st.Kills, st.Jumps, st.DamageTaken, status)
	}

	fmt.Fprintln(w, "--- Survivors ---")
	for _, team := range slices.Sorted(maps.Keys(res.Survivors)) {
		fmt.Fprintf(w, "Team %d               : %d\n", team, res.Survivors[team])
	}
}

// printTraceSummary writes aggregate trace counts with sorted keys.
func printTraceSummary(w io.Writer, sum *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Trace Summary ===")
	fmt.Fprintf(w, "Shots Fired          : %d (%d guided)\n", sum.TotalShots, sum.GuidedShots)
	printCounts(w, "  by ship", sum.ShotsByShip)
	fmt.Fprintf(w, "Jumps                : %d\n", sum.TotalJumps)
	printCounts(w, "  by transition", sum.JumpsByTransition)
	fmt.Fprintf(w, "Destroyed            : %d\n", sum.TotalDestroyed)
	printCounts(w, "  kills by ship", sum.KillsByShip)
}

func printCounts(w io.Writer, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintln(w, label)
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		fmt.Fprintf(w, "    %-16s : %d\n", k, counts[k])
	}
}
