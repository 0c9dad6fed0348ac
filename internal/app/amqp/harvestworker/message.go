package harvestworker

import "time"

const HarvestRequestedEventName = "harvester/url.requested"

type HarvestRequestedEventData struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	OutDir  string            `json:"out_dir,omitempty"`
}

type HarvestRequestedEnvelope struct {
	EventName string                    `json:"event_name"`
	EventID   string                    `json:"event_id"`
	TS        time.Time                 `json:"ts"`
	Data      HarvestRequestedEventData `json:"data"`
}
