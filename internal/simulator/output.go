package simulator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chrisdamba/trafficsim/internal/models"
)

// OutputDestination receives every sample after it has been stored.
type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

type ConsoleOutput struct {
	w io.Writer
}

func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleOutput{w: w}
}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	if _, err := fmt.Fprintf(c.w, "[%s] %s\n", topic, msg); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error {
	return nil
}

const eventTrafficSample = "TrafficSample"

type sampleEvent struct {
	EventType string `json:"eventType"`
	*models.TrafficSample
}

func serializeSample(sample *models.TrafficSample) ([]byte, error) {
	return json.Marshal(sampleEvent{EventType: eventTrafficSample, TrafficSample: sample})
}
