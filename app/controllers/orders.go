package controllers

import (
	"context"
	"net/http"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/app/services"
	"github.com/plantnet/plantnet/pkg/ctx"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Place handles POST /order.
func (o *OrderController) Place(c *ctx.Context) {
	o.create(c, o.orders.Place)
}

// Checkout handles POST /orders/checkout.
func (o *OrderController) Checkout(c *ctx.Context) {
	o.create(c, o.orders.Checkout)
}

func (o *OrderController) create(c *ctx.Context, fn func(context.Context, string, services.OrderInput) (models.InsertResult, error)) {
	email, ok := caller(c)
	if !ok {
		return
	}
	var in services.OrderInput
	if !c.BindJSON(&in) {
		return
	}

	res, err := fn(c.Context(), email, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// CustomerOrders handles GET /customer-orders/{email}.
func (o *OrderController) CustomerOrders(c *ctx.Context) {
	rows, err := o.orders.CustomerHistory(c.Context(), c.Param("email"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// SellerOrders handles GET /seller-orders/{email}.
func (o *OrderController) SellerOrders(c *ctx.Context) {
	rows, err := o.orders.SellerHistory(c.Context(), c.Param("email"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// UpdateStatus handles PATCH /orders/{id}.
func (o *OrderController) UpdateStatus(c *ctx.Context) {
	var in services.StatusInput
	if !c.BindJSON(&in) {
		return
	}

	res, err := o.orders.SetStatus(c.Context(), c.Param("id"), in.Status)
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Cancel handles DELETE /orders/{id}.
func (o *OrderController) Cancel(c *ctx.Context) {
	res, err := o.orders.Cancel(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, res)
}
