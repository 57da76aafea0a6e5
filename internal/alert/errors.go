package alert

import "github.com/manvi18ux/assistive-har-system/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig

	// Delivery Errors
	ErrVoiceDelivery   = errors.ErrorCode("alert_voice_delivery_failed")
	ErrToneDelivery    = errors.ErrorCode("alert_tone_delivery_failed")
	ErrMessageDelivery = errors.ErrorCode("alert_short_message_delivery_failed")
	ErrLogWrite        = errors.ErrorCode("alert_log_write_failed")

	// Queue Errors
	ErrQueueFull = errors.ErrorCode("alert_queue_full")

	// Shutdown Errors
	ErrShutdownTimeout = errors.ErrTimeout
)
