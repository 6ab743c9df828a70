package services

import (
	"context"
	"time"

	"github.com/plantnet/plantnet/app/repositories"
	"github.com/plantnet/plantnet/pkg/notification"
	"github.com/plantnet/plantnet/pkg/storage"
)

// Notifier is satisfied by *notification.Dispatcher.
type Notifier interface {
	SendAsync(ctx context.Context, address string, n notification.Notification)
}

// Services bundles the marketplace services over one store.
type Services struct {
	Users  *UserService
	Plants *PlantService
	Orders *OrderService
}

// New wires every service to store. disk may be nil when image uploads are
// not configured.
func New(store *repositories.Store, notifier Notifier, disk storage.Disk) *Services {
	return &Services{
		Users:  NewUserService(store.Users, notifier),
		Plants: NewPlantService(store.Plants, disk),
		Orders: NewOrderService(store.Orders, store.Plants, notifier),
	}
}

type clock func() time.Time
