package doctor

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jdmartin/aictl/internal/discover"
)

// ClientsCheck re-validates the discovery results: every detected binary
// must still exist on disk. All existence probes for the configured client
// set run as one concurrent wave.
type ClientsCheck struct {
	Detections []discover.Detection
}

var _ Check = (*ClientsCheck)(nil)

// Name returns the unique identifier for this check.
func (c *ClientsCheck) Name() string {
	return "clients"
}

// Run executes the clients check.
func (c *ClientsCheck) Run(ctx context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Details: map[string]any{}}

	vanished := make([]bool, len(c.Detections))
	var wg sync.WaitGroup
	for i, det := range c.Detections {
		if !det.Found() {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := os.Stat(det.BinaryPath)
			vanished[i] = err != nil
		}()
	}
	wg.Wait()

	clients := map[string]any{}
	for i, det := range c.Detections {
		info := map[string]any{"source": string(det.Source)}
		if det.Version != "" {
			info["version"] = det.Version
		}
		if det.BinaryPath != "" {
			info["binary"] = det.BinaryPath
		}

		switch {
		case !det.Found():
			res.Missing++
			info["status"] = "not_found"
			res.Warnings = append(res.Warnings, det.Warnings...)
		case vanished[i]:
			res.Missing++
			info["status"] = "vanished"
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%s binary %s disappeared after discovery", det.Client, det.BinaryPath))
		default:
			res.Available++
			info["status"] = "installed"
		}
		clients[det.Client] = info
	}
	res.Details["clients"] = clients

	switch {
	case res.Available == 0:
		res.Status = SeverityWarning
		res.Message = "no client binaries detected; aictl has nothing to manage"
	case res.Missing > 0:
		res.Status = SeverityPass
		res.Message = fmt.Sprintf("%d client(s) installed, %d not found", res.Available, res.Missing)
	default:
		res.Status = SeverityPass
		res.Message = fmt.Sprintf("%d client(s) installed", res.Available)
	}
	return res
}
