package controller

import "github.com/fadliRafidan/smart-lock-api/pkg/api/resource"

type ReplyStatus int

const (
	ReplyStatusOK ReplyStatus = iota
	ReplyStatusAbort
	ReplyStatusError
)

const (
	ReasonNotFound           = "ERR_NOT_FOUND"
	ReasonVersionConflict    = "ERR_VERSION_CONFLICT"
	ReasonInvalidArgument    = "ERR_INVALID_ARGUMENT"
	ReasonTechnicalException = "ERR_TECHNICAL_EXCEPTION"
)

type Reply struct {
	Status ReplyStatus `json:"status"`
	Result interface{} `json:"result,omitempty"`
}

type AbortResult struct {
	Reason  string      `json:"reason,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

type ErrorDetails struct {
	Message string `json:"message,omitempty"`
}

type GetStatusRequest struct {
	DeviceID string `json:"device_id"`
}

type UpdateStatusRequest struct {
	DeviceID string `json:"device_id"`
	resource.StatusUpdateResource
}
