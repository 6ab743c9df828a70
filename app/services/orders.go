package services

import (
	"context"
	"strings"
	"time"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/app/notifications"
	"github.com/plantnet/plantnet/app/repositories"
	"github.com/plantnet/plantnet/pkg/logger"
	"github.com/plantnet/plantnet/pkg/metrics"
)

const msgDelivered = "Cannot cancel once the product has been delivered"

// OrderInput is the checkout body. Customer.Email defaults to the caller.
type OrderInput struct {
	PlantID  string          `json:"plantId"  validate:"required,objectid"`
	Customer models.Customer `json:"customer"`
	Seller   string          `json:"seller"   validate:"required,email"`
	Quantity int             `json:"quantity" validate:"gt=0"`
	Price    float64         `json:"price"    validate:"gte=0"`
	Address  string          `json:"address"  validate:"max=512"`
	Status   string          `json:"status"   validate:"max=50"`
}

// StatusInput is the body of PATCH /orders/{id}.
type StatusInput struct {
	Status string `json:"status" validate:"required,max=50"`
}

type OrderService struct {
	orders   repositories.OrderRepository
	plants   repositories.PlantRepository
	notifier Notifier
	now      clock
}

func NewOrderService(orders repositories.OrderRepository, plants repositories.PlantRepository, notifier Notifier) *OrderService {
	return &OrderService{orders: orders, plants: plants, notifier: notifier, now: time.Now}
}

// Place records the order as sent and notifies both parties. Stock is not
// touched; the storefront adjusts it with a separate call.
func (s *OrderService) Place(ctx context.Context, callerEmail string, in OrderInput) (models.InsertResult, error) {
	o := s.build(callerEmail, in)

	res, err := s.orders.Insert(ctx, &o)
	if err != nil {
		return models.InsertResult{}, internal("place order", err)
	}
	metrics.OrdersPlaced.WithLabelValues("plain").Inc()
	s.notify(ctx, &o)
	return res, nil
}

// Checkout reserves the stock, then records the order. If the insert fails
// the reservation is handed back.
func (s *OrderService) Checkout(ctx context.Context, callerEmail string, in OrderInput) (models.InsertResult, error) {
	if err := s.plants.Reserve(ctx, in.PlantID, in.Quantity); err != nil {
		return models.InsertResult{}, translate("reserve stock", "plant", err)
	}

	o := s.build(callerEmail, in)
	res, err := s.orders.Insert(ctx, &o)
	if err != nil {
		// The insert may have failed because ctx ended; the release must
		// still reach the store.
		release := context.WithoutCancel(ctx)
		if _, rerr := s.plants.AdjustQuantity(release, in.PlantID, in.Quantity); rerr != nil {
			logger.WithCtx(ctx).Error("stock release failed",
				"plant_id", in.PlantID, "quantity", in.Quantity, "error", rerr)
		}
		return models.InsertResult{}, internal("checkout", err)
	}
	metrics.OrdersPlaced.WithLabelValues("reserved").Inc()
	s.notify(ctx, &o)
	return res, nil
}

func (s *OrderService) build(callerEmail string, in OrderInput) models.Order {
	o := models.Order{
		PlantID:   in.PlantID,
		Customer:  in.Customer,
		Seller:    in.Seller,
		Quantity:  in.Quantity,
		Price:     in.Price,
		Address:   in.Address,
		Status:    in.Status,
		Timestamp: s.now().UnixMilli(),
	}
	if o.Customer.Email == "" {
		o.Customer.Email = callerEmail
	}
	if o.Status == "" {
		o.Status = models.OrderPending
	}
	return o
}

func (s *OrderService) notify(ctx context.Context, o *models.Order) {
	if s.notifier == nil {
		return
	}
	s.notifier.SendAsync(ctx, o.Customer.Email, notifications.OrderPlaced{TransactionID: o.ID})
	s.notifier.SendAsync(ctx, o.Seller, notifications.OrderReceived{CustomerName: o.Customer.Name})
}

// SetStatus moves the order to status. The set of statuses is open.
func (s *OrderService) SetStatus(ctx context.Context, id, status string) (models.UpdateResult, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return models.UpdateResult{}, badRequest("status is required")
	}
	res, err := s.orders.SetStatus(ctx, id, status)
	if err != nil {
		return models.UpdateResult{}, translate("set order status", "order", err)
	}
	return res, nil
}

// Cancel deletes the order unless it was delivered.
func (s *OrderService) Cancel(ctx context.Context, id string) (models.DeleteResult, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return models.DeleteResult{}, translate("find order", "order", err)
	}
	if o.Status == models.OrderDelivered {
		return models.DeleteResult{}, conflict(msgDelivered)
	}

	res, err := s.orders.Delete(ctx, id)
	if err != nil {
		return models.DeleteResult{}, translate("cancel order", "order", err)
	}
	return res, nil
}

func (s *OrderService) CustomerHistory(ctx context.Context, email string) ([]models.OrderView, error) {
	rows, err := s.orders.CustomerHistory(ctx, email)
	if err != nil {
		return nil, internal("customer orders", err)
	}
	return rows, nil
}

func (s *OrderService) SellerHistory(ctx context.Context, email string) ([]models.OrderView, error) {
	rows, err := s.orders.SellerHistory(ctx, email)
	if err != nil {
		return nil, internal("seller orders", err)
	}
	return rows, nil
}
