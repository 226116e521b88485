package controller

import (
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"leadreach/worker"
)

// HandleOutreachProgressWS streams batch progress events to the client until
// it disconnects. An optional job_id query narrows the stream to one batch.
func HandleOutreachProgressWS(hub *worker.ProgressHub, logger *logrus.Logger) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		jobID := c.Query("job_id")
		events := hub.Subscribe()
		defer hub.Unsubscribe(events)

		// Drain client frames so close handshakes are noticed.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				if jobID != "" && event.JobID != jobID {
					continue
				}
				if err := c.WriteJSON(event); err != nil {
					logger.WithError(err).Debug("Progress websocket write failed")
					return
				}
			}
		}
	}
}
