package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/app/repositories"
	"github.com/plantnet/plantnet/app/services"
	"github.com/plantnet/plantnet/pkg/storage"
)

func intPtr(n int) *int { return &n }

func TestCreateStampsSellerFromSession(t *testing.T) {
	ctx := context.Background()
	plants := new(mockPlants)
	plants.On("Insert", ctx, mock.MatchedBy(func(p *models.Plant) bool {
		return p.Seller.Email == "seller@example.com" && p.Seller.Name == "Sam" && p.Quantity == 10
	})).Return(models.InsertResult{Acknowledged: true, InsertedID: "abc"}, nil)

	res, err := services.NewPlantService(plants, nil).Create(ctx, "seller@example.com", services.PlantInput{
		Name:     "Fern",
		Quantity: intPtr(10),
		Seller:   models.Seller{Name: "Sam", Email: "spoofed@example.com"},
	})

	require.NoError(t, err)
	assert.Equal(t, "abc", res.InsertedID)
	plants.AssertExpectations(t)
}

func TestListCapsLimit(t *testing.T) {
	ctx := context.Background()
	plants := new(mockPlants)
	plants.On("List", ctx, repositories.PlantListLimit).Return([]models.Plant{{Name: "a"}}, nil).Twice()
	plants.On("List", ctx, 5).Return([]models.Plant{}, nil).Once()

	svc := services.NewPlantService(plants, nil)
	_, err := svc.List(ctx)
	require.NoError(t, err)
	_, err = svc.ListN(ctx, 500)
	require.NoError(t, err)
	_, err = svc.ListN(ctx, 5)
	require.NoError(t, err)
	plants.AssertExpectations(t)
}

func TestGetPlantErrors(t *testing.T) {
	ctx := context.Background()
	plants := new(mockPlants)
	plants.On("FindByID", ctx, "missing").Return(nil, repositories.ErrNotFound)
	plants.On("FindByID", ctx, "bad").Return(nil, repositories.ErrInvalidID)

	svc := services.NewPlantService(plants, nil)
	_, err := svc.Get(ctx, "missing")
	assert.True(t, services.IsKind(err, services.KindNotFound))
	_, err = svc.Get(ctx, "bad")
	assert.True(t, services.IsKind(err, services.KindBadRequest))
}

func TestDeleteRequiresOwnership(t *testing.T) {
	ctx := context.Background()
	id := models.NewID()
	plants := new(mockPlants)
	plants.On("FindByID", ctx, id).Return(&models.Plant{ID: id, Seller: models.Seller{Email: "owner@example.com"}}, nil)
	plants.On("Delete", ctx, id).Return(models.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil).Once()

	svc := services.NewPlantService(plants, nil)

	_, err := svc.Delete(ctx, "other@example.com", id)
	assert.True(t, services.IsKind(err, services.KindForbidden))
	plants.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	res, err := svc.Delete(ctx, "owner@example.com", id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedCount)
}

func TestAdjustQuantityDirection(t *testing.T) {
	ctx := context.Background()
	plants := new(mockPlants)
	ok := models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}
	plants.On("AdjustQuantity", ctx, "p1", -3).Return(ok, nil).Twice()
	plants.On("AdjustQuantity", ctx, "p1", 3).Return(ok, nil).Once()

	svc := services.NewPlantService(plants, nil)
	for _, status := range []string{"", "decrease"} {
		_, err := svc.AdjustQuantity(ctx, "p1", 3, status)
		require.NoError(t, err)
	}
	_, err := svc.AdjustQuantity(ctx, "p1", 3, services.QuantityIncrease)
	require.NoError(t, err)
	plants.AssertExpectations(t)
}

func TestUploadImage(t *testing.T) {
	disk, err := storage.NewLocalDisk(t.TempDir(), "/storage")
	require.NoError(t, err)
	svc := services.NewPlantService(new(mockPlants), disk)
	ctx := context.Background()

	out, err := svc.UploadImage(ctx, "Fern.PNG", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.URL, "/storage/plants/"))
	assert.True(t, strings.HasSuffix(out.URL, ".png"))
	assert.True(t, disk.Exists(ctx, strings.TrimPrefix(out.URL, "/storage/")))

	_, err = svc.UploadImage(ctx, "notes.txt", "text/plain", strings.NewReader("x"))
	assert.True(t, services.IsKind(err, services.KindBadRequest))

	_, err = services.NewPlantService(new(mockPlants), nil).UploadImage(ctx, "a.png", "image/png", strings.NewReader("x"))
	assert.True(t, services.IsKind(err, services.KindInternal))
}
