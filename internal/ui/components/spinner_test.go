// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// visibleLine replays carriage returns to get what the terminal line shows.
func visibleLine(raw string) string {
	var line []rune
	col := 0
	for _, r := range raw {
		if r == '\r' {
			col = 0
			continue
		}
		if col < len(line) {
			line[col] = r
		} else {
			line = append(line, r)
		}
		col++
	}
	return strings.TrimRight(string(line), " ")
}

// =============================================================================
// SPINNER TESTS
// =============================================================================

func TestSpinner_DisabledIsNoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name        string
		label       string
		interactive bool
	}{
		{"not a terminal", "Assistant> ", false},
		{"empty label", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out syncBuffer
			s := NewSpinner(&out, tt.label, tt.interactive)
			if s.Enabled() {
				t.Fatal("spinner should be disabled")
			}
			s.Start()
			s.Stop()
			s.Stop()
			if out.String() != "" {
				t.Errorf("output = %q, want nothing", out.String())
			}
		})
	}
}

func TestSpinner_StopLeavesExactlyLabel(t *testing.T) {
	defer goleak.VerifyNone(t)

	const label = "Assistant> "
	var out syncBuffer
	s := NewSpinner(&out, label, true)
	s.interval = 5 * time.Millisecond
	s.Start()
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	raw := out.String()
	// Frames follow the label after one separating space.
	if !strings.Contains(raw, "\r"+label+" |") {
		t.Errorf("expected at least one frame, got %q", raw)
	}
	if got := visibleLine(raw); got != "Assistant>" {
		t.Errorf("visible line = %q, want %q", got, "Assistant>")
	}
	if !strings.HasSuffix(raw, "\rAssistant> ") {
		t.Errorf("output should end with the label, got %q", raw)
	}
	if !s.LabelShown() {
		t.Error("LabelShown() = false after Stop")
	}

	// Further calls add nothing.
	s.Stop()
	s.PrintLabel()
	if out.String() != raw {
		t.Errorf("repeated Stop/PrintLabel wrote %q", strings.TrimPrefix(out.String(), raw))
	}
}

func TestSpinner_StopIsIdempotentAndConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out syncBuffer
	s := NewSpinner(&out, "> ", true)
	s.interval = time.Millisecond
	s.Start()
	time.Sleep(5 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Stop()
		}()
	}
	wg.Wait()

	if n := strings.Count(out.String(), strings.Repeat(" ", 2)+"\r> "); n != 1 {
		t.Errorf("clear sequence written %d times, want 1", n)
	}
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out syncBuffer
	s := NewSpinner(&out, "> ", true)
	s.Stop()
	if out.String() != "" {
		t.Errorf("Stop before Start wrote %q", out.String())
	}

	s.PrintLabel()
	s.PrintLabel()
	if out.String() != "> " {
		t.Errorf("PrintLabel output = %q, want label once", out.String())
	}

	// A stopped spinner does not restart.
	s.Start()
	time.Sleep(5 * time.Millisecond)
	if out.String() != "> " {
		t.Errorf("Start after Stop wrote %q", out.String())
	}
}

func TestSpinner_NoFramesAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out syncBuffer
	s := NewSpinner(&out, "> ", true)
	s.interval = time.Millisecond
	s.Start()
	time.Sleep(3 * time.Millisecond)
	s.Stop()

	after := out.String()
	time.Sleep(10 * time.Millisecond)
	if out.String() != after {
		t.Error("spinner wrote after Stop returned")
	}
}

func TestSpinner_UsesLineFrames(t *testing.T) {
	s := NewSpinner(&syncBuffer{}, "AI> ", true)
	want := []string{"|", "/", "-", "\\"}
	if strings.Join(s.frames, "") != strings.Join(want, "") {
		t.Errorf("frames = %v, want %v", s.frames, want)
	}
}
