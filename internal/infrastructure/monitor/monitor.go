package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Probe reads one store end to end and reports how many records it holds.
type Probe struct {
	Name  string
	Check func(ctx context.Context) (int, error)
}

// Monitor runs every probe on demand. It keeps no state between checks.
type Monitor struct {
	probes []Probe
	logger *zap.Logger
}

func New(logger *zap.Logger, probes ...Probe) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes: probes,
		logger: logger,
	}
}

// Check runs the probes in order. A failing probe marks the status unhealthy
// without stopping the others.
func (m *Monitor) Check(ctx context.Context) Status {
	status := Status{
		Healthy:    true,
		Components: make([]Component, 0, len(m.probes)),
		LastCheck:  time.Now(),
	}

	for _, p := range m.probes {
		c := Component{Name: p.Name}
		size, err := p.Check(ctx)
		if err != nil {
			m.logger.Warn("health probe failed", zap.String("component", p.Name), zap.Error(err))
			c.Error = err.Error()
			status.Healthy = false
		} else {
			c.Online = true
			c.Size = size
		}
		status.Components = append(status.Components, c)
	}
	return status
}
