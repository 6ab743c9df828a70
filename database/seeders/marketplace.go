package seeders

import (
	"context"
	"time"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/app/repositories"
)

const (
	DemoAdmin    = "admin@plantnet.dev"
	DemoSeller   = "seller@plantnet.dev"
	DemoCustomer = "customer@plantnet.dev"
)

func init() {
	Register("users", SeedUsers)
	Register("plants", SeedPlants)
}

// SeedUsers creates one user per role.
func SeedUsers(ctx context.Context, store *repositories.Store) error {
	users := []struct {
		email, name string
		role        models.Role
	}{
		{DemoAdmin, "Ada Admin", models.RoleAdmin},
		{DemoSeller, "Sol Seller", models.RoleSeller},
		{DemoCustomer, "Cleo Customer", models.RoleCustomer},
	}

	now := time.Now().UnixMilli()
	for _, u := range users {
		stored, _, err := store.Users.CreateIfAbsent(ctx, models.User{
			Email:     u.email,
			Name:      u.name,
			Role:      models.RoleCustomer,
			Timestamp: now,
		})
		if err != nil {
			return err
		}
		if stored.Role == u.role {
			continue
		}
		if _, err := store.Users.SetRole(ctx, u.email, u.role, models.StatusVerified); err != nil {
			return err
		}
	}
	return nil
}

// SeedPlants lists a few plants for the demo seller unless they already
// have inventory.
func SeedPlants(ctx context.Context, store *repositories.Store) error {
	existing, err := store.Plants.ListBySeller(ctx, DemoSeller)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	seller := models.Seller{Name: "Sol Seller", Email: DemoSeller}
	plants := []models.Plant{
		{Name: "Monstera Deliciosa", Category: "Indoor", Price: 42, Quantity: 10, Description: "Split-leaf philodendron."},
		{Name: "Snake Plant", Category: "Indoor", Price: 18, Quantity: 25, Description: "Tolerates low light."},
		{Name: "Lavender", Category: "Outdoor", Price: 9.5, Quantity: 40, Description: "Needs full sun."},
		{Name: "Echeveria", Category: "Succulent", Price: 6, Quantity: 60, Description: "Water sparingly."},
	}
	for i := range plants {
		plants[i].Seller = seller
		if _, err := store.Plants.Insert(ctx, &plants[i]); err != nil {
			return err
		}
	}
	return nil
}
