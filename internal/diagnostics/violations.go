package diagnostics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flytam/filenamify"
)

// DumpViolation writes a one-off human-readable dump of a violation to
// dir, named after the offending player, the way the teacher's
// utils/proxy/packet_logger.go and resourcepacks.go sanitize
// server/pack-derived names with filenamify before touching the
// filesystem.
func DumpViolation(dir, player string, err error) error {
	safeName, ferr := filenamify.FilenamifyV2(player)
	if ferr != nil {
		safeName = "unknown-player"
	}
	name := fmt.Sprintf("%s_%s.violation.log", safeName, time.Now().Format("2006-01-02_15-04-05"))
	return os.WriteFile(filepath.Join(dir, name), []byte(err.Error()+"\n"), 0o644)
}
