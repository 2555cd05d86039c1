package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/factorygirl/component"
	"github.com/kbukum/factorygirl/logger"
)

// ComponentInfo is one component's line in the summary.
type ComponentInfo struct {
	Name    string
	Type    string
	Details string
	Status  component.HealthStatus
	Message string
}

// Summary records what an App started.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	components      []ComponentInfo
}

// NewSummary creates an empty summary.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Collect replaces the component list with the registry's components,
// their descriptions and current health.
func (s *Summary) Collect(ctx context.Context, registry *component.Registry) {
	health := make(map[string]component.Health)
	for _, h := range registry.HealthAll(ctx) {
		health[h.Name] = h
	}

	s.components = s.components[:0]
	for _, c := range registry.All() {
		info := ComponentInfo{Name: c.Name(), Type: "component"}
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			info.Type, info.Details = desc.Type, desc.Details
		}
		if h, ok := health[c.Name()]; ok {
			info.Status, info.Message = h.Status, h.Message
		}
		s.components = append(s.components, info)
	}
}

// Components returns the collected component lines.
func (s *Summary) Components() []ComponentInfo {
	return append([]ComponentInfo(nil), s.components...)
}

// Log writes one debug line per component.
func (s *Summary) Log(log *logger.Logger) {
	log.Debug("Application started", map[string]interface{}{
		"name":               s.serviceName,
		"version":            s.version,
		logger.FieldDuration: s.startupDuration.Milliseconds(),
	})
	for _, c := range s.components {
		log.Debug("Component ready", map[string]interface{}{
			logger.FieldComponent: c.Name,
			"type":                c.Type,
			"details":             c.Details,
			"status":              string(c.Status),
		})
	}
}

// Write prints the summary as an aligned table.
func (s *Summary) Write(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (started in %s)\n", s.serviceName, s.version, s.startupDuration.Round(time.Millisecond))
	for _, c := range s.components {
		line := fmt.Sprintf("  %-12s %-10s %-10s %s", c.Name, c.Type, c.Status, c.Details)
		if c.Message != "" {
			line += " (" + c.Message + ")"
		}
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
