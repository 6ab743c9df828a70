package seeders_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/app/repositories"
	"github.com/plantnet/plantnet/database/seeders"
	"github.com/plantnet/plantnet/pkg/database"
)

func TestRunAllIsRepeatable(t *testing.T) {
	db, err := database.OpenSQL("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	store, err := repositories.NewSQLStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, seeders.RunAll(ctx, store, &out))
	require.NoError(t, seeders.RunAll(ctx, store, &out))
	assert.Contains(t, out.String(), "Running seeder: users")

	admin, err := store.Users.FindByEmail(ctx, seeders.DemoAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, models.StatusVerified, admin.Status)

	plants, err := store.Plants.ListBySeller(ctx, seeders.DemoSeller)
	require.NoError(t, err)
	assert.Len(t, plants, 4)
}
