package progress

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/forgebuild/forge/internal/execplan"
)

func TestRenderer_SinkFormatsEachOutcome(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Sink(execplan.ProgressEvent{ActionID: "1", Member: "app", Kind: "compile", Outcome: execplan.OutcomeSucceeded, Duration: 12 * time.Millisecond})
	r.Sink(execplan.ProgressEvent{ActionID: "2", Member: "app", Kind: "link", Outcome: execplan.OutcomeSkipped})
	r.Sink(execplan.ProgressEvent{ActionID: "3", Member: "gui", Kind: "compile", Outcome: execplan.OutcomeFailed})

	out := buf.String()
	assert.Contains(t, out, "compile")
	assert.Contains(t, out, "app")
	assert.Contains(t, out, "link")
	assert.Contains(t, out, "gui")
	assert.Contains(t, out, "12ms")
}
