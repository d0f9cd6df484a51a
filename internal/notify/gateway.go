package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	gateway "github.com/nimasrn/customer-ledger/internal/gateways"
	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/pkg/logger"
	"github.com/nimasrn/customer-ledger/pkg/prom"
)

var (
	ErrDraftFinalized = errors.New("notification already sent or cancelled")
	ErrDraftBusy      = errors.New("notification is being processed")
)

type Transport interface {
	Send(ctx context.Context, to, message string) (gateway.Result, error)
}

type PhoneNormalizer interface {
	Normalize(raw string) (string, error)
}

// Gateway drives a draft through Composed, any number of edits, and then
// exactly one of Sent or Cancelled.
type Gateway struct {
	store     DraftStore
	transport Transport
	phones    PhoneNormalizer
	now       func() time.Time
}

func NewGateway(store DraftStore, transport Transport, phones PhoneNormalizer) *Gateway {
	return &Gateway{
		store:     store,
		transport: transport,
		phones:    phones,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Open stores d as a new draft in the Composed state.
func (g *Gateway) Open(ctx context.Context, userID string, d Draft) (*Draft, error) {
	number, err := g.phones.Normalize(d.Phone)
	if err != nil {
		return nil, model.NewValidationError("phone", err.Error())
	}
	if strings.TrimSpace(d.Message) == "" {
		return nil, model.NewValidationError("message", "message is required")
	}

	now := g.now()
	d.ID = uuid.NewString()
	d.UserID = userID
	d.Phone = number
	d.State = StateComposed
	d.Outcome = nil
	d.CreatedAt = now
	d.UpdatedAt = now

	if err := g.store.Save(ctx, &d); err != nil {
		return nil, err
	}

	logger.Debug("notification draft opened", "draft_id", d.ID, "customer_id", d.CustomerID)
	return &d, nil
}

func (g *Gateway) Get(ctx context.Context, userID, id string) (*Draft, error) {
	return g.store.Load(ctx, userID, id)
}

func (g *Gateway) Edit(ctx context.Context, userID, id string, edit DraftEdit) (*Draft, error) {
	var phone string
	if edit.Phone != nil {
		number, err := g.phones.Normalize(*edit.Phone)
		if err != nil {
			return nil, model.NewValidationError("phone", err.Error())
		}
		phone = number
	}
	if edit.Message != nil && strings.TrimSpace(*edit.Message) == "" {
		return nil, model.NewValidationError("message", "message is required")
	}

	var out *Draft
	err := g.transition(ctx, userID, id, func(d *Draft) error {
		if edit.Phone != nil {
			d.Phone = phone
		}
		if edit.Message != nil {
			d.Message = *edit.Message
		}
		out = d
		return nil
	})
	return out, err
}

// Confirm dispatches the draft. Whatever the transport does, the draft ends up
// Sent and the outcome says whether it succeeded. Errors are returned only for
// invalid transitions and store problems before the transport was called.
func (g *Gateway) Confirm(ctx context.Context, userID, id string) (Outcome, error) {
	var (
		outcome    Outcome
		dispatched bool
	)
	err := g.transition(ctx, userID, id, func(d *Draft) error {
		res, err := g.transport.Send(ctx, d.Phone, d.Message)
		dispatched = true
		if err != nil {
			logger.Warn("notification transport error", "draft_id", d.ID, "error", err)
		}
		outcome = outcomeOf(res, err)
		d.State = StateSent
		d.Outcome = &outcome
		return nil
	})
	if err != nil && !dispatched {
		return Outcome{}, err
	}
	if err != nil {
		// the SMS already went out; a failed write back must not hide that
		logger.Error("failed to store notification outcome", "draft_id", id,
			"success", outcome.Success, "delivery", outcome.Delivery, "error", err)
	}

	prom.IncNotificationOutcome(outcomeLabel(outcome))
	logger.Info("notification confirmed", "draft_id", id, "success", outcome.Success, "delivery", outcome.Delivery)
	return outcome, nil
}

func (g *Gateway) Cancel(ctx context.Context, userID, id string) (Outcome, error) {
	outcome := Outcome{Sent: false, Success: true, Status: StatusSavedCanceled}
	err := g.transition(ctx, userID, id, func(d *Draft) error {
		d.State = StateCancelled
		d.Outcome = &outcome
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	prom.IncNotificationOutcome(outcomeLabel(outcome))
	logger.Info("notification cancelled", "draft_id", id)
	return outcome, nil
}

// transition loads a Composed draft under the confirm lock, applies fn and
// writes the result back.
func (g *Gateway) transition(ctx context.Context, userID, id string, fn func(d *Draft) error) error {
	d, err := g.store.Load(ctx, userID, id)
	if err != nil {
		return err
	}
	if d.State.Terminal() {
		return ErrDraftFinalized
	}

	locked, err := g.store.Lock(ctx, userID, id)
	if err != nil {
		return err
	}
	if !locked {
		return ErrDraftBusy
	}
	defer func() {
		if err := g.store.Unlock(context.WithoutCancel(ctx), userID, id); err != nil {
			logger.Warn("failed to release notification lock", "draft_id", id, "error", err)
		}
	}()

	// reload, another request may have finalized it before we took the lock
	d, err = g.store.Load(ctx, userID, id)
	if err != nil {
		return err
	}
	if d.State.Terminal() {
		return ErrDraftFinalized
	}

	if err := fn(d); err != nil {
		return err
	}
	d.UpdatedAt = g.now()
	return g.store.Replace(context.WithoutCancel(ctx), d)
}

func outcomeOf(res gateway.Result, err error) Outcome {
	o := Outcome{
		Sent:     true,
		Success:  err == nil && res.Success(),
		Delivery: string(res.Delivery),
		Detail:   res.Detail,
	}
	if o.Delivery == "" {
		o.Delivery = string(gateway.DeliveryFailed)
	}
	if o.Success {
		o.Status = StatusSent
		return o
	}
	o.Status = StatusFailed
	o.Notice = StatusSavedNoSMS
	if o.Detail == "" && err != nil {
		o.Detail = err.Error()
	}
	return o
}

func outcomeLabel(o Outcome) string {
	switch {
	case !o.Sent:
		return "cancelled"
	case o.Success:
		return "sent"
	}
	return "failed"
}
