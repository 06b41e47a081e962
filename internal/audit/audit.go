// Package audit records authorization decisions. Events describe who
// asked what and whether it was allowed; they never feed back into the
// decision itself.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"solid-service/pkg/logger"
)

// Event is one authorization decision. RequestID ties the event back
// to the transport exchange it was made for.
type Event struct {
	ID        uuid.UUID `json:"id"`
	RequestID string    `json:"request_id,omitempty"`
	Time      time.Time `json:"time"`
	Agent     string    `json:"agent"`
	Target    string    `json:"target"`
	Method    string    `json:"method"`
	Allowed   bool      `json:"allowed"`
}

// Recorder writes events asynchronously so the request path never
// blocks on the trail. A full buffer drops the event rather than the
// request.
type Recorder struct {
	events chan Event
	done   chan struct{}
}

const recorderBuffer = 256

func NewRecorder() *Recorder {
	r := &Recorder{
		events: make(chan Event, recorderBuffer),
		done:   make(chan struct{}),
	}
	go r.drain()
	return r
}

// Record enqueues an event, stamping id and time.
func (r *Recorder) Record(_ context.Context, event Event) {
	event.ID = uuid.New()
	event.Time = time.Now().UTC()
	select {
	case r.events <- event:
	default:
		log.Printf("audit: buffer full, dropping event for %s", event.Target)
	}
}

// Close stops the recorder after flushing buffered events.
func (r *Recorder) Close() {
	close(r.events)
	<-r.done
}

func (r *Recorder) drain() {
	defer close(r.done)
	for event := range r.events {
		line, err := json.Marshal(event)
		if err != nil {
			log.Printf("audit: failed to encode event: %v", err)
			continue
		}
		log.Printf("audit: %s", logger.SanitizeLogMessage(string(line)))
	}
}
