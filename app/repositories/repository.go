// Package repositories persists users, plants and orders. Every contract
// has a MongoDB implementation (the default) and a GORM one for SQL
// deployments; both return ErrNotFound for missing records.
package repositories

import (
	"context"
	"errors"

	"github.com/plantnet/plantnet/app/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidID         = errors.New("invalid id")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// PlantListLimit caps the public catalogue listing.
const PlantListLimit = 20

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateIfAbsent inserts u unless a user with u.Email exists. It returns
	// the stored record and whether it was created by this call.
	CreateIfAbsent(ctx context.Context, u models.User) (*models.User, bool, error)
	ListExcept(ctx context.Context, email string) ([]models.User, error)
	SetStatus(ctx context.Context, email string, status models.UserStatus) (models.UpdateResult, error)
	SetRole(ctx context.Context, email string, role models.Role, status models.UserStatus) (models.UpdateResult, error)
}

type PlantRepository interface {
	// Insert assigns p.ID.
	Insert(ctx context.Context, p *models.Plant) (models.InsertResult, error)
	List(ctx context.Context, limit int) ([]models.Plant, error)
	FindByID(ctx context.Context, id string) (*models.Plant, error)
	ListBySeller(ctx context.Context, email string) ([]models.Plant, error)
	Delete(ctx context.Context, id string) (models.DeleteResult, error)
	// AdjustQuantity adds delta to the stock with no floor.
	AdjustQuantity(ctx context.Context, id string, delta int) (models.UpdateResult, error)
	// Reserve decrements stock by qty only if at least qty is available.
	// It returns ErrInsufficientStock or ErrNotFound otherwise.
	Reserve(ctx context.Context, id string, qty int) error
}

type OrderRepository interface {
	// Insert assigns o.ID.
	Insert(ctx context.Context, o *models.Order) (models.InsertResult, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	SetStatus(ctx context.Context, id, status string) (models.UpdateResult, error)
	Delete(ctx context.Context, id string) (models.DeleteResult, error)
	// CustomerHistory joins each of the customer's orders with its plant's
	// name, image and category. Orders whose plant is gone are omitted.
	CustomerHistory(ctx context.Context, email string) ([]models.OrderView, error)
	// SellerHistory is the seller's counterpart; only the plant name is copied.
	SellerHistory(ctx context.Context, email string) ([]models.OrderView, error)
}

// Store bundles the repositories over one shared connection.
type Store struct {
	Users  UserRepository
	Plants PlantRepository
	Orders OrderRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the underlying connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
