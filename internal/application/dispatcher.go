package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"smart-lights/internal/domain"
)

const SummaryFailed = "FAILED TO UPDATE LIGHTS"

// DeviceService opens sessions against the device-control API.
type DeviceService interface {
	Open() DeviceSession
}

// DeviceSession sends command batches to devices. A session is used for a
// single dispatch and closed afterwards; it must be safe for concurrent use.
type DeviceSession interface {
	SendCommands(ctx context.Context, deviceID string, commands []domain.DeviceCommand) ([]byte, error)
	Close()
}

// DeviceResult is the outcome of updating a single device.
type DeviceResult struct {
	Name     string
	DeviceID string
	Commands []domain.DeviceCommand
	Response []byte
	Err      error
}

// Outcome collects per-device results of one dispatch. Unresolved lists the
// batch names missing from the topology; they count neither as success nor
// as failure.
type Outcome struct {
	Results    []DeviceResult
	Unresolved []string
}

func (o *Outcome) Failed() int {
	n := 0
	for _, r := range o.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func (o *Outcome) Succeeded() int {
	return len(o.Results) - o.Failed()
}

// Summary flattens the outcome into the string reported back to the model.
func (o *Outcome) Summary() string {
	if o.Failed() > 0 {
		return SummaryFailed
	}
	return fmt.Sprintf("%d LIGHTS UPDATED", len(o.Results))
}

type Dispatcher struct {
	topology *domain.Topology
	devices  DeviceService
	metrics  Metrics
	logger   *slog.Logger
}

func NewDispatcher(topology *domain.Topology, devices DeviceService, metrics Metrics, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		topology: topology,
		devices:  devices,
		metrics:  metrics,
		logger:   logger,
	}
}

// Dispatch compiles and sends the batch to every resolvable device at once
// and waits for all of them, regardless of individual failures.
func (d *Dispatcher) Dispatch(ctx context.Context, batch domain.BatchConfig) *Outcome {
	outcome := &Outcome{}

	for name := range batch {
		if _, ok := d.topology.Resolve(name); !ok {
			outcome.Unresolved = append(outcome.Unresolved, name)
		}
	}
	sort.Strings(outcome.Unresolved)

	for _, name := range d.topology.Names() {
		cfg, ok := batch[name]
		if !ok {
			continue
		}
		id, _ := d.topology.Resolve(name)
		outcome.Results = append(outcome.Results, DeviceResult{
			Name:     name,
			DeviceID: id,
			Commands: cfg.Compile(),
		})
	}

	if len(outcome.Unresolved) > 0 {
		d.logger.Warn("ignoring unknown devices", "names", outcome.Unresolved)
	}

	d.send(ctx, outcome.Results)
	d.record(outcome)

	return outcome
}

func (d *Dispatcher) send(ctx context.Context, results []DeviceResult) {
	if len(results) == 0 {
		return
	}

	session := d.devices.Open()
	defer session.Close()

	var g errgroup.Group
	for i := range results {
		res := &results[i]
		// nothing to send; an empty request would be a no-op
		if len(res.Commands) == 0 {
			continue
		}
		g.Go(func() error {
			d.logger.Debug("updating light", "name", res.Name, "device_id", res.DeviceID, "commands", len(res.Commands))
			res.Response, res.Err = session.SendCommands(ctx, res.DeviceID, res.Commands)
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Dispatcher) record(outcome *Outcome) {
	for _, r := range outcome.Results {
		if r.Err != nil {
			d.logger.Warn("light update failed", "name", r.Name, "device_id", r.DeviceID, "error", r.Err)
			d.metrics.DeviceOutcome(OutcomeFailed)
			continue
		}
		d.metrics.DeviceOutcome(OutcomeSucceeded)
	}
	for range outcome.Unresolved {
		d.metrics.DeviceOutcome(OutcomeUnresolved)
	}

	d.logger.Info("lights dispatched",
		"succeeded", outcome.Succeeded(),
		"failed", outcome.Failed(),
		"unresolved", len(outcome.Unresolved),
	)
}
