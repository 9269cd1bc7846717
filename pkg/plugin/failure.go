package plugin

import (
	"strings"

	"github.com/pingcap/errors"
)

// FailureCollector accumulates configuration problems so that a plugin can
// report all of them at once instead of failing on the first.
type FailureCollector struct {
	failures []string
}

func NewFailureCollector() *FailureCollector {
	return &FailureCollector{}
}

// Addf records one failure.
func (c *FailureCollector) Addf(format string, args ...interface{}) {
	c.failures = append(c.failures, errors.Errorf(format, args...).Error())
}

// Empty reports whether no failures were collected.
func (c *FailureCollector) Empty() bool {
	return len(c.failures) == 0
}

// OrError returns nil if no failures were collected, otherwise a single
// error joining all of them.
func (c *FailureCollector) OrError() error {
	if len(c.failures) == 0 {
		return nil
	}
	return errors.Errorf("Invalid configuration:\n  - %s", strings.Join(c.failures, "\n  - "))
}
