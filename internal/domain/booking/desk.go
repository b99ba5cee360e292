package booking

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vendora/vendora-api/internal/pkg/compensation"
	"github.com/vendora/vendora-api/internal/pkg/metrics"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

// Responder applies actions to requests. *Service implements it.
type Responder interface {
	Respond(ctx context.Context, sess session.Session, id uuid.UUID, cmd Command) (*Request, error)
}

// Desk holds the two work queues shown to a caller: requests awaiting the
// vendor's answer and requests awaiting the viewer's payment. Decline and
// Settle drop the item immediately and put it back where it was if the
// transition does not go through.
type Desk struct {
	sess      session.Session
	responder Responder
	metrics   *metrics.Metrics

	mu         sync.Mutex
	actionable []*Request
	payments   []*Request
}

// NewDesk sorts reqs into the caller's queues. Requests the caller cannot
// act on are left out.
func NewDesk(sess session.Session, responder Responder, m *metrics.Metrics, reqs []*Request) *Desk {
	d := &Desk{sess: sess, responder: responder, metrics: m}
	for _, r := range reqs {
		switch {
		case r.Status == StatusPending && sess.OwnsVendor(r.VendorID):
			d.actionable = append(d.actionable, r)
		case (r.Status == StatusAccepted || r.Status == StatusCountered) && r.IsRequester(sess.UserID):
			d.payments = append(d.payments, r)
		}
	}
	SortByFirstDate(d.actionable)
	SortByFirstDate(d.payments)
	return d
}

func (d *Desk) Actionable() []*Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Request{}, d.actionable...)
}

func (d *Desk) Payments() []*Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Request{}, d.payments...)
}

// Decline removes id from the actionable queue and declines it.
func (d *Desk) Decline(ctx context.Context, id uuid.UUID) (*Request, error) {
	return d.take(ctx, &d.actionable, id, ActionDecline, "desk_decline")
}

// Settle removes id from the payment queue and reports it settled offline.
func (d *Desk) Settle(ctx context.Context, id uuid.UUID) (*Request, error) {
	return d.take(ctx, &d.payments, id, ActionSettleOffline, "desk_settle")
}

func (d *Desk) take(ctx context.Context, queue *[]*Request, id uuid.UUID, action Action, op string) (*Request, error) {
	var (
		idx     = -1
		item    *Request
		updated *Request
	)

	remove := func(context.Context) error {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, r := range *queue {
			if r.ID == id {
				idx, item = i, r
				break
			}
		}
		if item == nil {
			return notFoundError(op, ErrQueueItemMissing)
		}
		*queue = append((*queue)[:idx:idx], (*queue)[idx+1:]...)
		return nil
	}

	restore := func(context.Context) error {
		d.mu.Lock()
		defer d.mu.Unlock()
		pos := idx
		if pos > len(*queue) {
			pos = len(*queue)
		}
		*queue = append((*queue)[:pos:pos], append([]*Request{item}, (*queue)[pos:]...)...)
		d.metrics.RollbackApplied(op)
		return nil
	}

	transition := func(ctx context.Context) error {
		version := item.Version
		r, err := d.responder.Respond(ctx, d.sess, id, Command{Action: action, Version: &version})
		if err != nil {
			return err
		}
		updated = r
		return nil
	}

	if err := compensation.Run(ctx, remove, restore, transition); err != nil {
		return nil, err
	}
	return updated, nil
}
