package statsd

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// kitLogger adapts a logrus.FieldLogger to go-kit's log.Logger, which the
// dogstatsd encoder and the connection manager report through.
type kitLogger struct {
	logger logrus.FieldLogger
}

// Log logs keyvals as fields. Entries carrying an "err" key are logged at
// error level, everything else at debug.
func (l kitLogger) Log(keyvals ...interface{}) error {
	fields := make(logrus.Fields, (len(keyvals)+1)/2)
	for i := 0; i < len(keyvals); i += 2 {
		var v interface{} = "(MISSING)"
		if i+1 < len(keyvals) {
			v = keyvals[i+1]
		}
		fields[fmt.Sprint(keyvals[i])] = v
	}

	entry := l.logger.WithFields(fields)
	if _, ok := fields["err"]; ok {
		entry.Error("statsd connection")
		return nil
	}
	entry.Debug("statsd connection")
	return nil
}
