package animix

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

// captureStderr runs fn with os.Stderr redirected and returns what was written.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w
	fn()
	_ = w.Close()
	os.Stderr = oldStderr

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func TestDebugMode_LogsTickStats(t *testing.T) {
	n := NewNode("n")
	m := NewMixer(n)
	m.SetDebugMode(true)
	m.Action(rampClip(t, 1), nil).Play()

	output := captureStderr(t, func() { m.Advance(0.5) })
	if !strings.Contains(output, "[animix]") {
		t.Fatalf("expected tick stats on stderr, got: %q", output)
	}
	if !strings.Contains(output, "actions: 1") || !strings.Contains(output, "applied: 1") {
		t.Errorf("unexpected stats line: %q", output)
	}
}

func TestDebugMode_OffIsSilent(t *testing.T) {
	n := NewNode("n")
	m := NewMixer(n)
	m.Action(rampClip(t, 1), nil).Play()

	output := captureStderr(t, func() { m.Advance(0.5) })
	if output != "" {
		t.Errorf("expected no output with debug off, got: %q", output)
	}
}

func TestDebugMode_BindingWarning(t *testing.T) {
	m := NewMixer(NewNode("n"))
	m.SetDebugMode(true)

	output := captureStderr(t, func() {
		m.debugLog(tickStats{bindings: debugMaxBindings + 1})
	})
	if !strings.Contains(output, "warning") {
		t.Errorf("expected live binding warning, got: %q", output)
	}
}

func TestDebugMode_LogsBindingErrors(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	n := NewNode("n")
	track := mustTrack(t, "leg.x", []float64{0, 1}, []float64{0, 1}, 1, InterpolateLinear)
	clip, _ := NewClip("c", -1, track)
	m := NewMixer(n)
	m.Action(clip, nil).Play()

	m.Advance(0.1)
	if buf.Len() != 0 {
		t.Fatalf("binding error logged with debug off: %q", buf.String())
	}

	n2 := NewNode("n2")
	m2 := NewMixer(n2)
	m2.SetDebugMode(true)
	m2.Action(clip, nil).Play()
	_ = captureStderr(t, func() { m2.Advance(0.1) })
	if !strings.Contains(buf.String(), "leg") {
		t.Errorf("expected binding error in log, got: %q", buf.String())
	}
}
