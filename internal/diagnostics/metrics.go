package diagnostics

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

// RunMetricsLoop periodically logs the host's overall memory usage, the
// same signal the teacher's updater.go samples (via gopsutil/v3/mem) when
// building its update-check user agent - here it's just an ambient
// operability signal, sampled on its own schedule.
func RunMetricsLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v, err := mem.VirtualMemory()
			if err != nil {
				logrus.Debugf("diagnostics: failed to sample memory: %v", err)
				continue
			}
			logrus.Infof("diagnostics: memory used %.1f%% (%d MB / %d MB)",
				v.UsedPercent, v.Used/1024/1024, v.Total/1024/1024)
		}
	}
}
