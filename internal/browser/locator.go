package browser

import (
	"fmt"
	"time"
)

// Default polling parameters for portal elements. The search box gets
// a much longer window because the portal's entry page can take minutes
// to render behind its queueing proxy.
const (
	DefaultTimeout  = 20 * time.Second
	DefaultInterval = 1 * time.Second
)

// Locator names one element (or element set) on the portal by XPath
// and carries the patience budget for finding it. It is a plain value:
// resolving it against a page happens in Session.
type Locator struct {
	Expr     string
	Timeout  time.Duration
	Interval time.Duration
}

// ByXPath builds a locator with the default timeout and poll interval.
func ByXPath(expr string) Locator {
	return Locator{Expr: expr, Timeout: DefaultTimeout, Interval: DefaultInterval}
}

// WithTimeout returns a copy of the locator with a different patience budget.
func (l Locator) WithTimeout(d time.Duration) Locator {
	l.Timeout = d
	return l
}

// NotFoundError reports that a locator's element never appeared within
// its timeout. It is transient from the workflow's point of view: a
// fresh session and another attempt may succeed.
type NotFoundError struct {
	Expr    string
	Elapsed time.Duration
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("element %q not found after %s", e.Expr, e.Elapsed.Round(time.Millisecond))
}
