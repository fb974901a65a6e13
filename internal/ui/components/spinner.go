// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides terminal widgets for the r9s chat loop.
package components

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
)

// =============================================================================
// SPINNER CONSTANTS
// =============================================================================

const (
	// SpinnerInterval is the delay between animation frames.
	SpinnerInterval = 120 * time.Millisecond

	// SpinnerStopTimeout bounds how long Stop waits for the animation
	// goroutine to acknowledge.
	SpinnerStopTimeout = 500 * time.Millisecond
)

// spinnerFrames is the ASCII line animation: | / - \
var spinnerFrames = spinner.Line.Frames

// =============================================================================
// SPINNER
// =============================================================================

// Spinner animates a frame after a label while the caller waits for the
// first streamed fragment.
//
// While running, the animation goroutine is the only writer to out. Stop
// revokes its write access, waits (bounded) for it to exit, and leaves the
// line showing exactly the label. After Stop returns the caller owns out.
type Spinner struct {
	out         io.Writer
	label       string
	frames      []string
	interval    time.Duration
	stopTimeout time.Duration
	enabled     bool
	log         *zap.Logger

	mu         sync.Mutex
	running    bool
	revoked    bool
	drawn      int
	labelShown bool
	stop       chan struct{}
	done       chan struct{}
}

// NewSpinner returns a spinner writing to out. It only animates when
// interactive is true and label is non-empty; otherwise Start is a no-op.
func NewSpinner(out io.Writer, label string, interactive bool) *Spinner {
	return &Spinner{
		out:         out,
		label:       label,
		frames:      spinnerFrames,
		interval:    SpinnerInterval,
		stopTimeout: SpinnerStopTimeout,
		enabled:     interactive && label != "",
		log:         zap.NewNop(),
	}
}

// WithLogger sets the logger used to report a slow shutdown.
func (s *Spinner) WithLogger(log *zap.Logger) *Spinner {
	if log != nil {
		s.log = log.Named("spinner")
	}
	return s
}

// Enabled reports whether Start will animate.
func (s *Spinner) Enabled() bool {
	return s.enabled
}

// Start launches the animation. It does nothing when the spinner is
// disabled, already running, or already stopped.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.running || s.revoked {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

func (s *Spinner) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for idx := 0; ; idx++ {
		if !s.draw(s.frames[idx%len(s.frames)]) {
			return
		}
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// draw writes one frame unless Stop has revoked write access.
func (s *Spinner) draw(frame string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revoked {
		return false
	}
	anim := " " + frame
	_, _ = io.WriteString(s.out, "\r"+s.label+anim)
	s.drawn = runewidth.StringWidth(anim)
	return true
}

// Stop ends the animation and leaves the label on the line. It is safe to
// call any number of times, including when Start was never called.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.revoked {
		s.mu.Unlock()
		return
	}
	s.revoked = true
	running := s.running
	s.mu.Unlock()

	if !running {
		return
	}

	close(s.stop)
	select {
	case <-s.done:
	case <-time.After(s.stopTimeout):
		s.log.Warn("spinner did not stop in time", zap.Duration("timeout", s.stopTimeout))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		_, _ = io.WriteString(s.out, "\r"+s.label+strings.Repeat(" ", s.drawn)+"\r"+s.label)
	} else {
		_, _ = io.WriteString(s.out, s.label)
	}
	s.drawn = 0
	s.labelShown = true
}

// PrintLabel writes the label unless it is already on the line.
func (s *Spinner) PrintLabel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.labelShown || s.label == "" {
		return
	}
	_, _ = io.WriteString(s.out, s.label)
	s.labelShown = true
}

// LabelShown reports whether the label has been written.
func (s *Spinner) LabelShown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.labelShown
}
