package api

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadSubscription reads a Web Push subscription JSON, as produced by
// PushSubscription.toJSON() in a browser or by a push service.
func LoadSubscription(path string) (PushSubscription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PushSubscription{}, fmt.Errorf("failed to read subscription: %w", err)
	}
	var sub PushSubscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return PushSubscription{}, fmt.Errorf("failed to parse subscription %s: %w", path, err)
	}
	if sub.Endpoint == "" {
		return PushSubscription{}, fmt.Errorf("subscription %s has no endpoint", path)
	}
	return sub, nil
}
