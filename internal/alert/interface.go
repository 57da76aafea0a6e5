package alert

import "context"

// VoiceChannel announces an alert audibly. Utterances may take seconds;
// the dispatcher calls this on its own goroutine per event.
type VoiceChannel interface {
	Speak(ctx context.Context, message string) error
}

// ToneChannel plays an audible tone pattern.
type ToneChannel interface {
	Play(ctx context.Context, pattern TonePattern) error
}

// ShortMessageChannel forwards a critical alert to emergency contacts.
type ShortMessageChannel interface {
	Send(ctx context.Context, event Event) error
}

// TelemetryPusher forwards an accepted alert to a remote telemetry
// endpoint. Failures are expected when the endpoint is absent.
type TelemetryPusher interface {
	PushAlert(ctx context.Context, event Event) error
}

// DurableLog appends accepted alerts to persistent storage.
type DurableLog interface {
	Append(event Event) error
}

// Recorder receives every accepted alert for in-process aggregation.
type Recorder interface {
	RecordAlert(event Event)
}

// Channels bundles the sinks an event fans out to. Any field may be nil;
// a nil channel is simply skipped.
type Channels struct {
	Voice        VoiceChannel
	Tone         ToneChannel
	ShortMessage ShortMessageChannel
	Remote       TelemetryPusher
	Log          DurableLog
	Recorder     Recorder
}
