package console

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ericogr/foth433/pkg/output"
	"github.com/ericogr/foth433/pkg/sensor"
)

type ConsoleOutput struct {
	w io.Writer
}

func NewConsole() output.Output { return &ConsoleOutput{w: os.Stdout} }

func (c *ConsoleOutput) Publish(r sensor.Reading) error {
	_, err := fmt.Fprintf(c.w, "%s temperature=%.1f humidity=%d\n", r.Timestamp.Format(time.RFC3339), r.Temperature, r.Humidity)
	return err
}

func (c *ConsoleOutput) Close() error { return nil }
