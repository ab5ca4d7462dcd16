package resource

type RealtimeEventResource struct {
	DeviceID string      `json:"device_id"`
	Topic    string      `json:"topic"`
	Data     interface{} `json:"data"`
}

func NewRealtimeEvent(deviceID, topic string, data interface{}) *RealtimeEventResource {
	return &RealtimeEventResource{
		DeviceID: deviceID,
		Topic:    topic,
		Data:     data,
	}
}
