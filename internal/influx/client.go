package influx

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/InfluxCommunity/influxdb3-go/influxdb3"
	"github.com/sirupsen/logrus"
)

const writeBatchSize = 5000

type pointWriter interface {
	WritePoints(ctx context.Context, points []*influxdb3.Point, options ...influxdb3.WriteOption) error
	Close() error
}

// Client exports run results to InfluxDB. A nil *Client is valid and drops
// every write, so callers never need to check whether export is enabled.
type Client struct {
	writer     pointWriter
	ctx        context.Context
	runID      string
	sampleRate float64
	logger     logrus.FieldLogger
	sample     func() float64

	wg       sync.WaitGroup
	failures atomic.Int64
}

// NewClient returns nil when export is disabled.
func NewClient(ctx context.Context, cfg Config, runID string, logger logrus.FieldLogger) (*Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	ic, err := influxdb3.New(influxdb3.ClientConfig{
		Host:     cfg.URL,
		Token:    cfg.Token,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create InfluxDB client: %w", err)
	}

	return newClient(ctx, ic, runID, cfg.SampleRate, logger), nil
}

func newClient(ctx context.Context, w pointWriter, runID string, sampleRate float64, logger logrus.FieldLogger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if sampleRate <= 0 || sampleRate > 1 {
		sampleRate = 1
	}
	return &Client{
		writer:     w,
		ctx:        ctx,
		runID:      runID,
		sampleRate: sampleRate,
		logger:     logger.WithField("component", "influx"),
		sample:     rand.Float64,
	}
}

func (c *Client) RunID() string {
	if c == nil {
		return ""
	}
	return c.runID
}

// Failures reports how many batches could not be written.
func (c *Client) Failures() int64 {
	if c == nil {
		return 0
	}
	return c.failures.Load()
}

func (c *Client) keep() bool {
	if c.sampleRate >= 1 {
		return true
	}
	return c.sample() < c.sampleRate
}

func (c *Client) writePointsAsync(points []*influxdb3.Point) {
	if len(points) == 0 {
		return
	}
	batch := make([]*influxdb3.Point, len(points))
	copy(batch, points)

	c.wg.Go(func() {
		if err := c.writer.WritePoints(c.ctx, batch); err != nil {
			c.failures.Add(1)
			c.logger.WithError(err).WithField("points", len(batch)).Warn("InfluxDB write failed")
		}
	})
}

// Wait blocks until every queued batch has been written or has failed.
func (c *Client) Wait() {
	if c == nil {
		return
	}
	c.wg.Wait()
}

// Close waits for pending writes and releases the connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.wg.Wait()
	if err := c.writer.Close(); err != nil {
		return fmt.Errorf("failed to close InfluxDB client: %w", err)
	}
	return nil
}

// RunID derives a run identifier from the start time.
func RunID(t time.Time) string {
	return t.UTC().Format("20060102-150405")
}
