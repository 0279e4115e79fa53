package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// deadSession builds a session whose chromedp context has already
// ended, as after a session timeout.
func deadSession() *Session {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return &Session{
		id:          "test-session",
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: func() {},
		logger:      testLogger(),
	}
}

func TestFindOnDeadSessionReportsSessionError(t *testing.T) {
	s := deadSession()

	err := s.ClickFirst(context.Background(), ByXPath(`//button`).WithTimeout(50*time.Millisecond))
	require.Error(t, err)

	var se *SessionError
	require.ErrorAs(t, err, &se, "a dead browser is a session failure")
	var nf *NotFoundError
	assert.False(t, errors.As(err, &nf), "must not be misreported as a missing element")
}

func TestExistsOnDeadSessionReportsSessionError(t *testing.T) {
	s := deadSession()

	_, err := s.Exists(context.Background(), ByXPath(`//div`).WithTimeout(50*time.Millisecond))
	var se *SessionError
	require.ErrorAs(t, err, &se)
}

func TestRunReleaseCancelsMergedContext(t *testing.T) {
	s := &Session{ctx: context.Background(), logger: testLogger()}

	merged, done := s.run(context.Background())
	require.NoError(t, merged.Err())

	done()
	assert.ErrorIs(t, merged.Err(), context.Canceled)
}

func TestRunPropagatesCallerCancellation(t *testing.T) {
	s := &Session{ctx: context.Background(), logger: testLogger()}

	callerCtx, cancel := context.WithCancel(context.Background())
	merged, done := s.run(callerCtx)
	defer done()

	cancel()
	require.Eventually(t, func() bool { return merged.Err() != nil },
		time.Second, 10*time.Millisecond)
}

func TestRunWithoutCallerContext(t *testing.T) {
	s := &Session{ctx: context.Background(), logger: testLogger()}

	merged, done := s.run(nil)
	done()
	assert.NoError(t, merged.Err(), "release must not cancel the session itself")
}

func TestReleaseIsIdempotent(t *testing.T) {
	s := deadSession()
	s.Release()
	s.Release()
}
