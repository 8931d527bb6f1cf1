package diagnostics

import (
	"reflect"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

var dirC2S = color.CyanString("C") + "->" + color.GreenString("S")
var dirS2C = color.GreenString("S") + "->" + color.CyanString("C")

// tracePacketTypes are logged only at Trace, not Debug - acknowledgements
// are the noisiest packet in a busy session and rarely interesting on
// their own, the same role mutedPackets plays in the teacher's
// utils/proxy/packet_logger.go.
var tracePacketTypes = []string{"*protocol.ChatAcknowledgement"}

// LogPacket writes a direction-colored one-line trace of a packet written
// by a ChatQueue task.
func LogPacket(pk any, toServer bool) {
	dir := dirS2C
	if toServer {
		dir = dirC2S
	}
	name := reflect.TypeOf(pk).String()
	if slices.Contains(tracePacketTypes, name) {
		logrus.Tracef("%s %s", dir, name)
		return
	}
	logrus.Debugf("%s %s", dir, name)
}
