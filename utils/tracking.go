package utils

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// NewTrackingToken derives an opaque per-message token. The token is stored
// alongside the message id and must match on pixel requests.
func NewTrackingToken(messageID string) string {
	sum := sha256.Sum256([]byte(uuid.New().String() + messageID))
	return base64.RawURLEncoding.EncodeToString(sum[:])[:20]
}

// UnsubscribeURL builds the one-click unsubscribe link embedded in every
// outgoing email footer.
func UnsubscribeURL(baseURL, email, leadID string) string {
	return fmt.Sprintf("%s/api/unsubscribe?email=%s&id=%s",
		strings.TrimRight(baseURL, "/"), url.QueryEscape(email), leadID)
}

// TrackingPixelURL points at the open-tracking endpoint for one message.
func TrackingPixelURL(trackerURL, messageID, token string) string {
	return fmt.Sprintf("%s/track/open/%s/%s",
		strings.TrimRight(trackerURL, "/"), messageID, token)
}

// InjectTrackingPixel inserts a 1x1 pixel img before the closing body tag,
// appending it when the document has none.
func InjectTrackingPixel(html, pixelURL string) string {
	img := fmt.Sprintf(`<img src="%s" width="1" height="1" style="display:none;" alt=""/>`, pixelURL)
	if idx := strings.LastIndex(html, "</body>"); idx >= 0 {
		return html[:idx] + img + html[idx:]
	}
	return html + img
}
