package devicestate

import (
	"context"

	"github.com/fadliRafidan/smart-lock-api/pkg/model"
	"github.com/fadliRafidan/smart-lock-api/pkg/storage"
	"github.com/pkg/errors"
)

// Reader returns point-in-time snapshots of devices
type Reader struct {
	store storage.Interface
}

func NewReader(store storage.Interface) *Reader {
	return &Reader{store: store}
}

// GetDevice returns the device as currently committed
func (r *Reader) GetDevice(ctx context.Context, id string) (*model.Device, error) {
	m, err := r.store.Devices().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to read device")
	}

	return m, nil
}
