package services

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/app/repositories"
	"github.com/plantnet/plantnet/pkg/storage"
)

// QuantityIncrease is the adjustment status that adds stock. Anything else
// subtracts.
const QuantityIncrease = "increase"

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// PlantInput is a new listing. The seller email is taken from the session.
type PlantInput struct {
	Name        string        `json:"name"        validate:"required,max=255"`
	Category    string        `json:"category"    validate:"max=100"`
	Description string        `json:"description"`
	Image       string        `json:"image"       validate:"max=1024"`
	Price       float64       `json:"price"       validate:"gte=0"`
	Quantity    *int          `json:"quantity"    validate:"required,gte=0"`
	Seller      models.Seller `json:"seller"`
}

// QuantityInput is the body of PATCH /plants/quantity/{id}.
type QuantityInput struct {
	QuantityToUpdate *int   `json:"quantityToUpdate" validate:"required,gte=0"`
	Status           string `json:"status"`
}

// ImageURL is returned after an upload.
type ImageURL struct {
	URL string `json:"url"`
}

type PlantService struct {
	plants repositories.PlantRepository
	disk   storage.Disk
}

func NewPlantService(plants repositories.PlantRepository, disk storage.Disk) *PlantService {
	return &PlantService{plants: plants, disk: disk}
}

// Create stores a listing owned by sellerEmail.
func (s *PlantService) Create(ctx context.Context, sellerEmail string, in PlantInput) (models.InsertResult, error) {
	p := models.Plant{
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		Image:       in.Image,
		Price:       in.Price,
		Seller:      in.Seller,
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	p.Seller.Email = sellerEmail

	res, err := s.plants.Insert(ctx, &p)
	if err != nil {
		return models.InsertResult{}, internal("create plant", err)
	}
	return res, nil
}

// List returns the first page of the catalogue.
func (s *PlantService) List(ctx context.Context) ([]models.Plant, error) {
	return s.ListN(ctx, repositories.PlantListLimit)
}

// ListN returns up to limit plants, capped at PlantListLimit.
func (s *PlantService) ListN(ctx context.Context, limit int) ([]models.Plant, error) {
	if limit <= 0 || limit > repositories.PlantListLimit {
		limit = repositories.PlantListLimit
	}
	plants, err := s.plants.List(ctx, limit)
	if err != nil {
		return nil, internal("list plants", err)
	}
	return plants, nil
}

func (s *PlantService) Get(ctx context.Context, id string) (*models.Plant, error) {
	p, err := s.plants.FindByID(ctx, id)
	if err != nil {
		return nil, translate("get plant", "plant", err)
	}
	return p, nil
}

// ListBySeller returns the seller's own inventory.
func (s *PlantService) ListBySeller(ctx context.Context, email string) ([]models.Plant, error) {
	plants, err := s.plants.ListBySeller(ctx, email)
	if err != nil {
		return nil, internal("list seller plants", err)
	}
	return plants, nil
}

// Delete removes a listing. Only the seller who owns it may do so.
func (s *PlantService) Delete(ctx context.Context, sellerEmail, id string) (models.DeleteResult, error) {
	p, err := s.plants.FindByID(ctx, id)
	if err != nil {
		return models.DeleteResult{}, translate("find plant", "plant", err)
	}
	if p.Seller.Email != sellerEmail {
		return models.DeleteResult{}, forbidden("You can only delete your own plants")
	}

	res, err := s.plants.Delete(ctx, id)
	if err != nil {
		return models.DeleteResult{}, translate("delete plant", "plant", err)
	}
	return res, nil
}

// AdjustQuantity subtracts amount from the stock, or adds it when status is
// "increase". The result may go below zero.
func (s *PlantService) AdjustQuantity(ctx context.Context, id string, amount int, status string) (models.UpdateResult, error) {
	delta := -amount
	if status == QuantityIncrease {
		delta = amount
	}

	res, err := s.plants.AdjustQuantity(ctx, id, delta)
	if err != nil {
		return models.UpdateResult{}, translate("adjust quantity", "plant", err)
	}
	return res, nil
}

// UploadImage stores an image under plants/ and returns its public URL.
func (s *PlantService) UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (ImageURL, error) {
	if s.disk == nil {
		return ImageURL{}, internal("upload image", errNoDisk)
	}
	ext := strings.ToLower(path.Ext(filename))
	if !imageExts[ext] || !strings.HasPrefix(contentType, "image/") {
		return ImageURL{}, badRequest("image must be a jpg, png, webp or gif file")
	}

	key := path.Join("plants", models.NewID()+ext)
	if err := s.disk.Put(ctx, key, r, contentType); err != nil {
		return ImageURL{}, internal("upload image", err)
	}
	return ImageURL{URL: s.disk.URL(key)}, nil
}
