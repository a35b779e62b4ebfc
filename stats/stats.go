package stats

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// DefaultPort is the dogstatsd agent's UDP port.
const DefaultPort = 8125

// RuntimeStats receives counters about a resize run.
type RuntimeStats interface {
	LogStartup()

	Committed()
	Skipped()
	BytesSaved(n int64)
	ToolTime(tool string, elapsed time.Duration)
	Error(kind string)
}

var (
	_ RuntimeStats = (*DiscardStats)(nil)
	_ RuntimeStats = (*DatadogStats)(nil)
)

type DiscardStats struct{}

func (d *DiscardStats) LogStartup()                                 {}
func (d *DiscardStats) Committed()                                  {}
func (d *DiscardStats) Skipped()                                    {}
func (d *DiscardStats) BytesSaved(n int64)                          {}
func (d *DiscardStats) ToolTime(tool string, elapsed time.Duration) {}
func (d *DiscardStats) Error(kind string)                           {}

type DatadogStats struct {
	dog *statsd.Client
}

// NewDatadogStats sends metrics to the dogstatsd agent at datadogHost, which
// may be an IP or a resolvable name. A port of 0 selects DefaultPort.
func NewDatadogStats(datadogHost string, port int) (*DatadogStats, error) {
	if port == 0 {
		port = DefaultPort
	}

	addr := net.JoinHostPort(datadogHost, strconv.Itoa(port))
	client, err := statsd.New(addr,
		statsd.WithNamespace("imageresize"),
		statsd.WithoutTelemetry(),
		statsd.WithoutOriginDetection(),
	)
	if err != nil {
		return nil, fmt.Errorf("statsd client for %s: %w", addr, err)
	}

	return &DatadogStats{client}, nil
}

func (d *DatadogStats) LogStartup() {
	d.dog.Incr("startup", nil, 1)
}

func (d *DatadogStats) Committed() {
	d.dog.Incr("committed", nil, 1)
}

func (d *DatadogStats) Skipped() {
	d.dog.Incr("skipped", nil, 1)
}

func (d *DatadogStats) BytesSaved(n int64) {
	d.dog.Count("bytes_saved", n, nil, 1)
}

func (d *DatadogStats) ToolTime(tool string, elapsed time.Duration) {
	tag := fmt.Sprintf("tool:%s", tool)

	d.dog.Timing("tool_time", elapsed, []string{tag}, 1)
}

func (d *DatadogStats) Error(kind string) {
	tag := fmt.Sprintf("kind:%s", kind)
	d.dog.Incr("error", []string{tag}, 1)
}

// Close flushes buffered metrics and closes the connection.
func (d *DatadogStats) Close() error {
	return d.dog.Close()
}
