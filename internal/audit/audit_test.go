package audit

import (
	"bytes"
	"context"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorderWritesEvents(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	recorder := NewRecorder()
	recorder.Record(context.Background(), Event{
		Agent:   "http://test.com/alice#me",
		Target:  "http://test.com/foo",
		Method:  "GET",
		Allowed: true,
	})
	recorder.Close()

	output := buf.String()
	assert.Contains(t, output, "audit:")
	assert.Contains(t, output, `"target":"http://test.com/foo"`)
	assert.Contains(t, output, `"allowed":true`)
}

func TestRecorderStampsEvents(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	recorder := NewRecorder()
	recorder.Record(context.Background(), Event{Target: "http://test.com/foo", Method: "GET"})
	recorder.Close()

	assert.Contains(t, buf.String(), `"id":`)
	assert.Contains(t, buf.String(), `"time":`)
}
