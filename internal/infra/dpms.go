package infra

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

const xsetBinary = "xset"

// DPMSHelper implements domain.HelperController on top of the X server's DPMS
// timers. There is no helper process: "running" means DPMS is enabled.
type DPMSHelper struct {
	runner domain.CommandRunner
	logger *zap.Logger
}

// NewDPMSHelper creates a DPMS controller.
func NewDPMSHelper(runner domain.CommandRunner, logger *zap.Logger) *DPMSHelper {
	return &DPMSHelper{runner: runner, logger: logger}
}

// IsRunning parses `xset q`. Any failure (no display, no xset) counts as disabled.
func (d *DPMSHelper) IsRunning() bool {
	out, err := d.runner.Output(xsetBinary, "q")
	if err != nil {
		return false
	}
	return strings.Contains(string(out), "DPMS is Enabled")
}

// Start enables DPMS with standby, suspend and off all set to the duration.
func (d *DPMSHelper) Start(minutes int) (int, error) {
	if _, err := d.runner.LookPath(xsetBinary); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrHelperNotFound, xsetBinary, err)
	}

	seconds := strconv.Itoa(minutes * 60)
	if err := d.runner.Run(xsetBinary, "+dpms"); err != nil {
		return 0, fmt.Errorf("%w: xset +dpms: %v", domain.ErrSpawnFailed, err)
	}
	if err := d.runner.Run(xsetBinary, "dpms", seconds, seconds, seconds); err != nil {
		return 0, fmt.Errorf("%w: xset dpms %s: %v", domain.ErrSpawnFailed, seconds, err)
	}

	d.logger.Info("DPMS enabled", zap.Int("minutes", minutes))
	return 0, nil
}

// Stop disables DPMS. Disabling an already disabled DPMS is harmless.
func (d *DPMSHelper) Stop() ([]int, error) {
	if _, err := d.runner.LookPath(xsetBinary); err != nil {
		// Nothing can be running without xset.
		return nil, nil
	}
	if err := d.runner.Run(xsetBinary, "-dpms"); err != nil {
		return nil, fmt.Errorf("xset -dpms: %w", err)
	}
	d.logger.Info("DPMS disabled")
	return nil, nil
}

// Ensure DPMSHelper implements domain.HelperController.
var _ domain.HelperController = (*DPMSHelper)(nil)
