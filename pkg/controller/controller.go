package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fadliRafidan/smart-lock-api/pkg/api/resource"
	"github.com/fadliRafidan/smart-lock-api/pkg/devicestate"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Controller answers device state requests received over NATS
type Controller struct {
	nc          *nats.Conn
	coord       *devicestate.Coordinator
	baseSubject string
	timeout     time.Duration
	subs        []*nats.Subscription
}

// New creates a controller listening on <baseSubject>.get and
// <baseSubject>.update. timeout bounds the handling of a single request.
func New(nc *nats.Conn, coord *devicestate.Coordinator, baseSubject string, timeout time.Duration) *Controller {
	return &Controller{
		nc:          nc,
		coord:       coord,
		baseSubject: baseSubject,
		timeout:     timeout,
	}
}

// Subscribe joins the controllers queue group so requests are spread across
// instances
func (ctrl *Controller) Subscribe() error {
	if ctrl.nc == nil {
		return fmt.Errorf("controller: connection to nats is missing")
	}

	queue := ctrl.baseSubject + ".controllers"
	handlers := map[string]func(context.Context, []byte) *Reply{
		ctrl.baseSubject + ".get":    ctrl.handleGetStatus,
		ctrl.baseSubject + ".update": ctrl.handleUpdateStatus,
	}

	for subj, handle := range handlers {
		handle := handle
		sub, err := ctrl.nc.QueueSubscribe(subj, queue, func(msg *nats.Msg) {
			ctrl.respond(msg, handle)
		})
		if err != nil {
			ctrl.Unsubscribe()
			return err
		}
		ctrl.subs = append(ctrl.subs, sub)
		log.WithField("subject", subj).Debug("Subscribed controller")
	}

	return nil
}

// Unsubscribe stops receiving requests
func (ctrl *Controller) Unsubscribe() {
	for _, sub := range ctrl.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.Warn("controller: failed to unsubscribe: ", err)
		}
	}
	ctrl.subs = nil
}

func (ctrl *Controller) respond(msg *nats.Msg, handle func(context.Context, []byte) *Reply) {
	if msg.Reply == "" {
		return
	}

	ctx := context.Background()
	if ctrl.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ctrl.timeout)
		defer cancel()
	}

	res, err := json.Marshal(handle(ctx, msg.Data))
	if err != nil {
		log.Error("controller: failed to marshal reply: ", err)
		return
	}
	if err := ctrl.nc.Publish(msg.Reply, res); err != nil {
		log.Error("controller: failed to publish reply: ", err)
	}
}

func (ctrl *Controller) handleGetStatus(ctx context.Context, data []byte) *Reply {
	req := GetStatusRequest{}
	if err := json.Unmarshal(data, &req); err != nil {
		return abort(ReasonInvalidArgument, &ErrorDetails{Message: err.Error()})
	}
	if req.DeviceID == "" {
		return abort(ReasonInvalidArgument, &ErrorDetails{Message: "device_id is required"})
	}

	m, err := ctrl.coord.GetStatus(ctx, req.DeviceID)
	if err != nil {
		return replyForError(err)
	}

	return &Reply{Status: ReplyStatusOK, Result: resource.NewDevice(m)}
}

func (ctrl *Controller) handleUpdateStatus(ctx context.Context, data []byte) *Reply {
	req := UpdateStatusRequest{}
	if err := json.Unmarshal(data, &req); err != nil {
		return abort(ReasonInvalidArgument, &ErrorDetails{Message: err.Error()})
	}

	change, err := resource.ValidateStatusUpdate(req.DeviceID, &req.StatusUpdateResource)
	if err != nil {
		return abort(ReasonInvalidArgument, &ErrorDetails{Message: err.Error()})
	}

	m, err := ctrl.coord.UpdateStatus(ctx, change)
	if err != nil {
		return replyForError(err)
	}

	return &Reply{Status: ReplyStatusOK, Result: resource.NewStatusUpdated(m)}
}

func abort(reason string, details interface{}) *Reply {
	return &Reply{
		Status: ReplyStatusAbort,
		Result: &AbortResult{
			Reason:  reason,
			Details: details,
		},
	}
}

func replyForError(err error) *Reply {
	switch devicestate.OutcomeOf(err) {
	case devicestate.OutcomeNotFound:
		return abort(ReasonNotFound, nil)
	case devicestate.OutcomeConflict:
		conflict, _ := devicestate.IsConflict(err)
		return abort(ReasonVersionConflict, resource.NewConflict(conflict))
	default:
		return &Reply{
			Status: ReplyStatusError,
			Result: &AbortResult{
				Reason:  ReasonTechnicalException,
				Details: &ErrorDetails{Message: err.Error()},
			},
		}
	}
}
