package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/app/notifications"
	"github.com/plantnet/plantnet/app/repositories"
	"github.com/plantnet/plantnet/app/services"
	"github.com/plantnet/plantnet/pkg/database"
	"github.com/plantnet/plantnet/pkg/metrics"
)

type OrderServiceSuite struct {
	suite.Suite
	ctx      context.Context
	orders   *mockOrders
	plants   *mockPlants
	notifier *mockNotifier
	svc      *services.OrderService
	plantID  string
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceSuite))
}

func (s *OrderServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.orders = new(mockOrders)
	s.plants = new(mockPlants)
	s.notifier = new(mockNotifier)
	s.svc = services.NewOrderService(s.orders, s.plants, s.notifier)
	s.plantID = models.NewID()
}

func (s *OrderServiceSuite) input() services.OrderInput {
	return services.OrderInput{
		PlantID:  s.plantID,
		Customer: models.Customer{Name: "Cleo"},
		Seller:   "seller@example.com",
		Quantity: 2,
		Price:    30,
	}
}

func (s *OrderServiceSuite) expectInsert(id string) {
	s.orders.On("Insert", s.ctx, mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Order).ID = id }).
		Return(models.InsertResult{Acknowledged: true, InsertedID: id}, nil).Once()
}

func (s *OrderServiceSuite) TestPlaceNotifiesBothParties() {
	id := models.NewID()
	s.expectInsert(id)
	s.notifier.On("SendAsync", s.ctx, "cleo@example.com", notifications.OrderPlaced{TransactionID: id}).Once()
	s.notifier.On("SendAsync", s.ctx, "seller@example.com", notifications.OrderReceived{CustomerName: "Cleo"}).Once()

	before := testutil.ToFloat64(metrics.OrdersPlaced.WithLabelValues("plain"))
	res, err := s.svc.Place(s.ctx, "cleo@example.com", s.input())

	s.Require().NoError(err)
	s.Equal(id, res.InsertedID)
	s.Equal(before+1, testutil.ToFloat64(metrics.OrdersPlaced.WithLabelValues("plain")))
	s.notifier.AssertExpectations(s.T())

	stored := s.orders.Calls[0].Arguments.Get(1).(*models.Order)
	s.Equal(models.OrderPending, stored.Status)
	s.Equal("cleo@example.com", stored.Customer.Email)
	s.NotZero(stored.Timestamp)
	s.plants.AssertNotCalled(s.T(), "AdjustQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func (s *OrderServiceSuite) TestPlaceKeepsSuppliedStatusAndCustomer() {
	id := models.NewID()
	s.expectInsert(id)
	s.notifier.On("SendAsync", s.ctx, mock.Anything, mock.Anything)

	in := s.input()
	in.Status = models.OrderProcessing
	in.Customer.Email = "gift@example.com"
	_, err := s.svc.Place(s.ctx, "cleo@example.com", in)
	s.Require().NoError(err)

	stored := s.orders.Calls[0].Arguments.Get(1).(*models.Order)
	s.Equal(models.OrderProcessing, stored.Status)
	s.Equal("gift@example.com", stored.Customer.Email)
}

func (s *OrderServiceSuite) TestPlaceInsertFailureSendsNothing() {
	s.orders.On("Insert", s.ctx, mock.Anything).Return(models.InsertResult{}, errors.New("write conflict"))

	_, err := s.svc.Place(s.ctx, "cleo@example.com", s.input())
	s.True(services.IsKind(err, services.KindInternal))
	s.notifier.AssertNotCalled(s.T(), "SendAsync", mock.Anything, mock.Anything, mock.Anything)
}

func (s *OrderServiceSuite) TestCheckoutReservesFirst() {
	id := models.NewID()
	s.plants.On("Reserve", s.ctx, s.plantID, 2).Return(nil).Once()
	s.expectInsert(id)
	s.notifier.On("SendAsync", s.ctx, mock.Anything, mock.Anything).Twice()

	before := testutil.ToFloat64(metrics.OrdersPlaced.WithLabelValues("reserved"))
	_, err := s.svc.Checkout(s.ctx, "cleo@example.com", s.input())

	s.Require().NoError(err)
	s.Equal(before+1, testutil.ToFloat64(metrics.OrdersPlaced.WithLabelValues("reserved")))
	s.plants.AssertExpectations(s.T())
	s.notifier.AssertExpectations(s.T())
}

func (s *OrderServiceSuite) TestCheckoutOutOfStock() {
	s.plants.On("Reserve", s.ctx, s.plantID, 2).Return(repositories.ErrInsufficientStock)

	_, err := s.svc.Checkout(s.ctx, "cleo@example.com", s.input())
	s.True(services.IsKind(err, services.KindConflict))
	s.orders.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything)
}

func (s *OrderServiceSuite) TestCheckoutReleasesStockWhenInsertFails() {
	s.plants.On("Reserve", s.ctx, s.plantID, 2).Return(nil)
	s.orders.On("Insert", s.ctx, mock.Anything).Return(models.InsertResult{}, errors.New("disk full"))
	live := mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil })
	s.plants.On("AdjustQuantity", live, s.plantID, 2).Return(models.UpdateResult{MatchedCount: 1}, nil).Once()

	_, err := s.svc.Checkout(s.ctx, "cleo@example.com", s.input())
	s.True(services.IsKind(err, services.KindInternal))
	s.plants.AssertExpectations(s.T())
	s.notifier.AssertNotCalled(s.T(), "SendAsync", mock.Anything, mock.Anything, mock.Anything)
}

func (s *OrderServiceSuite) TestCheckoutReleasesStockAfterCancellation() {
	ctx, cancel := context.WithCancel(s.ctx)
	s.plants.On("Reserve", ctx, s.plantID, 2).Return(nil)
	s.orders.On("Insert", ctx, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(models.InsertResult{}, context.Canceled)
	live := mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil })
	s.plants.On("AdjustQuantity", live, s.plantID, 2).Return(models.UpdateResult{MatchedCount: 1}, nil).Once()

	_, err := s.svc.Checkout(ctx, "cleo@example.com", s.input())
	s.Error(err)
	s.plants.AssertExpectations(s.T())
}

func (s *OrderServiceSuite) TestSetStatus() {
	s.orders.On("SetStatus", s.ctx, "o1", "Delivered").Return(models.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	_, err := s.svc.SetStatus(s.ctx, "o1", " Delivered ")
	s.Require().NoError(err)

	_, err = s.svc.SetStatus(s.ctx, "o1", "")
	s.True(services.IsKind(err, services.KindBadRequest))
}

func (s *OrderServiceSuite) TestCancel() {
	s.orders.On("FindByID", s.ctx, "delivered").Return(&models.Order{Status: models.OrderDelivered}, nil)
	s.orders.On("FindByID", s.ctx, "pending").Return(&models.Order{Status: models.OrderPending}, nil)
	s.orders.On("FindByID", s.ctx, "gone").Return(nil, repositories.ErrNotFound)
	s.orders.On("Delete", s.ctx, "pending").Return(models.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil).Once()

	_, err := s.svc.Cancel(s.ctx, "delivered")
	var se *services.Error
	s.Require().ErrorAs(err, &se)
	s.Equal(409, se.HTTPStatus())
	s.Equal("Cannot cancel once the product has been delivered", se.PublicMessage())

	res, err := s.svc.Cancel(s.ctx, "pending")
	s.Require().NoError(err)
	s.Equal(int64(1), res.DeletedCount)

	_, err = s.svc.Cancel(s.ctx, "gone")
	s.True(services.IsKind(err, services.KindNotFound))

	s.orders.AssertNumberOfCalls(s.T(), "Delete", 1)
}

func TestHistoryPassThrough(t *testing.T) {
	ctx := context.Background()
	orders := new(mockOrders)
	rows := []models.OrderView{{Name: "Fern"}}
	orders.On("CustomerHistory", ctx, "c@example.com").Return(rows, nil)
	orders.On("SellerHistory", ctx, "s@example.com").Return(nil, errors.New("timeout"))

	svc := services.NewOrderService(orders, new(mockPlants), nil)
	got, err := svc.CustomerHistory(ctx, "c@example.com")
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	_, err = svc.SellerHistory(ctx, "s@example.com")
	assert.True(t, services.IsKind(err, services.KindInternal))
}

// cancellingOrders fails every insert the way a dropped client does.
type cancellingOrders struct {
	repositories.OrderRepository
	cancel context.CancelFunc
}

func (c cancellingOrders) Insert(ctx context.Context, _ *models.Order) (models.InsertResult, error) {
	c.cancel()
	return models.InsertResult{}, ctx.Err()
}

func TestCheckoutRestoresStockWhenClientGoesAway(t *testing.T) {
	db, err := database.OpenSQL("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	store, err := repositories.NewSQLStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	plant := &models.Plant{Name: "Fern", Quantity: 5, Seller: models.Seller{Email: "s@example.com"}}
	_, err = store.Plants.Insert(context.Background(), plant)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := services.NewOrderService(cancellingOrders{OrderRepository: store.Orders, cancel: cancel}, store.Plants, nil)

	_, err = svc.Checkout(ctx, "c@example.com", services.OrderInput{
		PlantID: plant.ID, Seller: "s@example.com", Quantity: 2,
	})
	require.Error(t, err)

	got, err := store.Plants.FindByID(context.Background(), plant.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
}
