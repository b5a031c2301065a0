package transform

import (
	"log/slog"

	"github.com/pleira/celest/internal/metrics"
)

// guardRotation checks a composed matrix. A failure panics in celestdebug builds;
// otherwise it is logged, counted, and returned to the caller.
func guardRotation(logger *slog.Logger, name string, m Matrix) error {
	err := CheckRotation(m)
	if err == nil {
		return nil
	}
	if strictRotations {
		panic(name + ": " + err.Error())
	}
	metrics.RecordRotationCheckFailure(name)
	if logger != nil {
		logger.Error("composed rotation failed orthonormality check", "transform", name, "error", err)
	}
	return err
}
