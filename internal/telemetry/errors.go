package telemetry

import "github.com/manvi18ux/assistive-har-system/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("telemetry_invalid_config")
	ErrInvalidDBPath = errors.ErrorCode("telemetry_invalid_db_path")

	// Storage Errors
	ErrStorageInit   = errors.ErrorCode("telemetry_storage_init_failed")
	ErrStorageAccess = errors.ErrorCode("telemetry_storage_access_failed")
	ErrStorageClose  = errors.ErrorCode("telemetry_storage_close_failed")

	// Input Errors
	ErrInvalidPayload = errors.ErrorCode("telemetry_invalid_payload")

	// Server Errors
	ErrServerStart    = errors.ErrorCode("telemetry_server_start_failed")
	ErrServerShutdown = errors.ErrShutdownFailed
)
