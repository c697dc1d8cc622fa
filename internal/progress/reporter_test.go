package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestTerminalReporterRendersWhileRunning(t *testing.T) {
	var buf bytes.Buffer
	r := &TerminalReporter{out: &buf}

	r.Start("Assessing prompt...")
	time.Sleep(300 * time.Millisecond)
	r.Stop()

	if buf.Len() == 0 {
		t.Fatal("nothing written while the spinner was running")
	}
	if !strings.Contains(buf.String(), "Assessing prompt") {
		t.Errorf("spinner output missing the message: %q", buf.String())
	}
}

func TestTerminalReporterStopWithoutStart(t *testing.T) {
	r := &TerminalReporter{out: &bytes.Buffer{}}
	r.Stop()
	r.Stop()
}

func TestTerminalReporterRestart(t *testing.T) {
	var buf bytes.Buffer
	r := &TerminalReporter{out: &buf}

	r.Start("first")
	r.Stop()
	first := buf.Len()

	r.Start("second")
	r.Stop()
	if buf.Len() <= first {
		t.Error("second Start produced no output")
	}
}

func TestCIReporterWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{out: &buf}

	r.Start("Synthesizing refined prompt...")
	r.Stop()

	if !strings.Contains(buf.String(), "Synthesizing refined prompt...") {
		t.Errorf("output = %q", buf.String())
	}
}
