package synth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/dgnsrekt/talkbox/internal/speech"
)

// SampleRate is the PCM rate every backend produces.
const SampleRate = 22050

const (
	minRate = 0.5
	maxRate = 2.0
)

// ErrNoVoice is returned when a backend has no voice to speak with.
var ErrNoVoice = errors.New("no voice available")

// Request describes one clip to render.
type Request struct {
	Text string

	// Voice selects the backend voice. A zero Voice uses the backend's
	// default.
	Voice speech.Voice

	// Rate is the speaking rate, 1 is normal.
	Rate float64
}

// Backend renders text to s16le mono PCM at SampleRate.
type Backend interface {
	Name() string
	Voices() []speech.Voice
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}

// runFunc executes an external program with stdin and returns its stdout.
type runFunc func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)

// runCommand runs name with a pre-filled stdin. On cancellation the process
// is interrupted first and killed if it does not exit promptly.
func runCommand(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = 100 * time.Millisecond

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%s produced no output: %s", name, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func clampRate(rate float64) float64 {
	switch {
	case rate <= 0:
		return 1
	case rate < minRate:
		return minRate
	case rate > maxRate:
		return maxRate
	}
	return rate
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
