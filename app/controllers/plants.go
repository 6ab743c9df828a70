package controllers

import (
	"net/http"

	"github.com/plantnet/plantnet/app/services"
	"github.com/plantnet/plantnet/pkg/ctx"
)

type PlantController struct {
	plants *services.PlantService
}

func NewPlantController(plants *services.PlantService) *PlantController {
	return &PlantController{plants: plants}
}

// Store handles POST /plants.
func (p *PlantController) Store(c *ctx.Context) {
	email, ok := caller(c)
	if !ok {
		return
	}
	var in services.PlantInput
	if !c.BindJSON(&in) {
		return
	}

	res, err := p.plants.Create(c.Context(), email, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Index handles GET /plants.
func (p *PlantController) Index(c *ctx.Context) {
	plants, err := p.plants.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, plants)
}

// Show handles GET /plants/{id}.
func (p *PlantController) Show(c *ctx.Context) {
	plant, err := p.plants.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, plant)
}

// Inventory handles GET /plants/seller.
func (p *PlantController) Inventory(c *ctx.Context) {
	email, ok := caller(c)
	if !ok {
		return
	}
	plants, err := p.plants.ListBySeller(c.Context(), email)
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, plants)
}

// Destroy handles DELETE /plants/{id}.
func (p *PlantController) Destroy(c *ctx.Context) {
	email, ok := caller(c)
	if !ok {
		return
	}
	res, err := p.plants.Delete(c.Context(), email, c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// AdjustQuantity handles PATCH /plants/quantity/{id}.
func (p *PlantController) AdjustQuantity(c *ctx.Context) {
	var in services.QuantityInput
	if !c.BindJSON(&in) {
		return
	}

	res, err := p.plants.AdjustQuantity(c.Context(), c.Param("id"), *in.QuantityToUpdate, in.Status)
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// UploadImage handles POST /plants/image with a multipart "image" part.
func (p *PlantController) UploadImage(c *ctx.Context) {
	file, header, err := c.FormFile("image")
	if err != nil {
		c.Error(http.StatusBadRequest, "an image file is required")
		return
	}
	defer file.Close()

	out, err := p.plants.UploadImage(c.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusCreated, out)
}
