package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/pkg/notification"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) CreateIfAbsent(ctx context.Context, u models.User) (*models.User, bool, error) {
	args := m.Called(ctx, u)
	stored, _ := args.Get(0).(*models.User)
	return stored, args.Bool(1), args.Error(2)
}

func (m *mockUsers) ListExcept(ctx context.Context, email string) ([]models.User, error) {
	args := m.Called(ctx, email)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *mockUsers) SetStatus(ctx context.Context, email string, status models.UserStatus) (models.UpdateResult, error) {
	args := m.Called(ctx, email, status)
	return args.Get(0).(models.UpdateResult), args.Error(1)
}

func (m *mockUsers) SetRole(ctx context.Context, email string, role models.Role, status models.UserStatus) (models.UpdateResult, error) {
	args := m.Called(ctx, email, role, status)
	return args.Get(0).(models.UpdateResult), args.Error(1)
}

type mockPlants struct{ mock.Mock }

func (m *mockPlants) Insert(ctx context.Context, p *models.Plant) (models.InsertResult, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(models.InsertResult), args.Error(1)
}

func (m *mockPlants) List(ctx context.Context, limit int) ([]models.Plant, error) {
	args := m.Called(ctx, limit)
	plants, _ := args.Get(0).([]models.Plant)
	return plants, args.Error(1)
}

func (m *mockPlants) FindByID(ctx context.Context, id string) (*models.Plant, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Plant)
	return p, args.Error(1)
}

func (m *mockPlants) ListBySeller(ctx context.Context, email string) ([]models.Plant, error) {
	args := m.Called(ctx, email)
	plants, _ := args.Get(0).([]models.Plant)
	return plants, args.Error(1)
}

func (m *mockPlants) Delete(ctx context.Context, id string) (models.DeleteResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.DeleteResult), args.Error(1)
}

func (m *mockPlants) AdjustQuantity(ctx context.Context, id string, delta int) (models.UpdateResult, error) {
	args := m.Called(ctx, id, delta)
	return args.Get(0).(models.UpdateResult), args.Error(1)
}

func (m *mockPlants) Reserve(ctx context.Context, id string, qty int) error {
	return m.Called(ctx, id, qty).Error(0)
}

type mockOrders struct{ mock.Mock }

func (m *mockOrders) Insert(ctx context.Context, o *models.Order) (models.InsertResult, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(models.InsertResult), args.Error(1)
}

func (m *mockOrders) FindByID(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *mockOrders) SetStatus(ctx context.Context, id, status string) (models.UpdateResult, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(models.UpdateResult), args.Error(1)
}

func (m *mockOrders) Delete(ctx context.Context, id string) (models.DeleteResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.DeleteResult), args.Error(1)
}

func (m *mockOrders) CustomerHistory(ctx context.Context, email string) ([]models.OrderView, error) {
	args := m.Called(ctx, email)
	rows, _ := args.Get(0).([]models.OrderView)
	return rows, args.Error(1)
}

func (m *mockOrders) SellerHistory(ctx context.Context, email string) ([]models.OrderView, error) {
	args := m.Called(ctx, email)
	rows, _ := args.Get(0).([]models.OrderView)
	return rows, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) SendAsync(ctx context.Context, address string, n notification.Notification) {
	m.Called(ctx, address, n)
}
