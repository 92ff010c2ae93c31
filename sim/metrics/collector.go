// Package metrics exposes simulation kernel counters to Prometheus. A
// Collector satisfies sim.Recorder and is handed to the Sim through its
// Config.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the kernel's Prometheus metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Frames        prometheus.Counter
	FrameDuration prometheus.Histogram
	ShotsFired    *prometheus.CounterVec
	HyperJumps    *prometheus.CounterVec
	Destroyed     *prometheus.CounterVec
	RegionShips   *prometheus.GaugeVec
	RegionShots   *prometheus.GaugeVec
}

// NewCollector registers the kernel metrics against reg, defaulting to the
// global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	frames, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_frames_total",
		Help: "Total number of simulation frames executed.",
	}), "sim_frames_total")
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_frame_duration_seconds",
		Help:    "Wall-clock time spent executing one simulation frame.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}), "sim_frame_duration_seconds")
	if err != nil {
		return nil, err
	}
	shots, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_shots_fired_total",
		Help: "Shots released, labeled by weapon design.",
	}, []string{"weapon"}), "sim_shots_fired_total")
	if err != nil {
		return nil, err
	}
	jumps, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_hyperjumps_total",
		Help: "Resolved region transfers, labeled by transition kind.",
	}, []string{"transition"}), "sim_hyperjumps_total")
	if err != nil {
		return nil, err
	}
	destroyed, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_objects_destroyed_total",
		Help: "Objects removed from the simulation, labeled by object type.",
	}, []string{"kind"}), "sim_objects_destroyed_total")
	if err != nil {
		return nil, err
	}
	ships, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_region_ships",
		Help: "Ships currently in each region.",
	}, []string{"region"}), "sim_region_ships")
	if err != nil {
		return nil, err
	}
	inflight, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_region_shots",
		Help: "Shots and drones currently in flight in each region.",
	}, []string{"region"}), "sim_region_shots")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:      gatherer,
		Frames:        frames,
		FrameDuration: duration,
		ShotsFired:    shots,
		HyperJumps:    jumps,
		Destroyed:     destroyed,
		RegionShips:   ships,
		RegionShots:   inflight,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) FrameExecuted(d time.Duration) {
	if c == nil {
		return
	}
	c.Frames.Inc()
	c.FrameDuration.Observe(d.Seconds())
}

func (c *Collector) ShotFired(weapon string) {
	if c == nil {
		return
	}
	c.ShotsFired.WithLabelValues(weapon).Inc()
}

func (c *Collector) HyperJumpResolved(transition string) {
	if c == nil {
		return
	}
	c.HyperJumps.WithLabelValues(transition).Inc()
}

func (c *Collector) ObjectDestroyed(kind string) {
	if c == nil {
		return
	}
	c.Destroyed.WithLabelValues(kind).Inc()
}

func (c *Collector) RegionPopulation(region string, ships, shots int) {
	if c == nil {
		return
	}
	c.RegionShips.WithLabelValues(region).Set(float64(ships))
	c.RegionShots.WithLabelValues(region).Set(float64(shots))
}

// register adds c to reg, returning the already-registered collector when
// an identical one exists.
func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
