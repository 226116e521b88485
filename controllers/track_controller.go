package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type openRecorder interface {
	RecordOpen(messageID, token string) bool
}

type TrackController struct {
	Logs   openRecorder
	Logger *logrus.Logger
}

func NewTrackController(logs openRecorder, logger *logrus.Logger) *TrackController {
	return &TrackController{
		Logs:   logs,
		Logger: logger,
	}
}

// transparent 1x1 GIF
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// TrackOpen records an email open and serves the pixel. The pixel is served
// even for bad tokens so scanners can't probe which message ids exist.
func (tc *TrackController) TrackOpen(c *fiber.Ctx) error {
	messageID := c.Params("messageID")
	token := c.Params("token")

	if tc.Logs.RecordOpen(messageID, token) {
		tc.Logger.WithField("message_id", messageID).Debug("Email open recorded")
	}

	c.Set(fiber.HeaderContentType, "image/gif")
	c.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate")
	c.Set(fiber.HeaderPragma, "no-cache")
	return c.Send(trackingPixel)
}
