package channel

import "github.com/manvi18ux/assistive-har-system/internal/errors"

const (
	// Configuration Errors
	ErrEmptyEndpoint = errors.ErrorCode("channel_empty_endpoint")
	ErrEmptyCommand  = errors.ErrorCode("channel_empty_command")
	ErrNoRecipients  = errors.ErrorCode("channel_no_recipients")

	// Delivery Errors
	ErrBadStatus     = errors.ErrorCode("channel_unexpected_status")
	ErrEncodePayload = errors.ErrorCode("channel_encode_payload_failed")
	ErrRequestFailed = errors.ErrorCode("channel_request_failed")
	ErrCommandFailed = errors.ErrorCode("channel_command_failed")
	ErrAllSuppressed = errors.ErrorCode("channel_all_recipients_suppressed")

	// Log Errors
	ErrLogOpen  = errors.ErrorCode("channel_log_open_failed")
	ErrLogWrite = errors.ErrorCode("channel_log_write_failed")
	ErrLogRead  = errors.ErrorCode("channel_log_read_failed")
)
