// Package notification sends fire-and-forget webhook notifications for
// session-level events: completed, failed, interrupted.
package notification

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"
)

// payload is the JSON body posted to the webhook.
type payload struct {
	Text string `json:"text"`
}

// Send posts the message to the webhook URL. Fire-and-forget: never blocks
// the session for long, silent on failure. No-op when the URL is empty.
func Send(webhookURL, message string) {
	if webhookURL == "" {
		return
	}

	body, err := json.Marshal(payload{Text: message})
	if err != nil {
		return
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return
	}
	resp.Body.Close()
}
