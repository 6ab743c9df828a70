package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/pkg/metrics"
)

// NewSQLStore wires the GORM repositories and migrates their tables.
func NewSQLStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&models.User{}, &models.Plant{}, &models.Order{}); err != nil {
		return nil, fmt.Errorf("repositories: migrate: %w", err)
	}
	return &Store{
		Users:  &SQLUsers{db: db},
		Plants: &SQLPlants{db: db},
		Orders: &SQLOrders{db: db},
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func checkID(id string) error {
	if !models.ValidID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func rowsUpdated(n int64) models.UpdateResult {
	return models.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}
}

type SQLUsers struct{ db *gorm.DB }

func (r *SQLUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	defer metrics.ObserveDBQuery("users", "find", time.Now())

	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *SQLUsers) CreateIfAbsent(ctx context.Context, u models.User) (*models.User, bool, error) {
	start := time.Now()
	u.ID = models.NewID()
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&u)
	metrics.ObserveDBQuery("users", "upsert", start)
	if res.Error != nil {
		return nil, false, fmt.Errorf("repositories: users upsert: %w", res.Error)
	}

	stored, err := r.FindByEmail(ctx, u.Email)
	if err != nil {
		return nil, false, err
	}
	return stored, res.RowsAffected == 1, nil
}

func (r *SQLUsers) ListExcept(ctx context.Context, email string) ([]models.User, error) {
	defer metrics.ObserveDBQuery("users", "find", time.Now())

	users := make([]models.User, 0)
	err := r.db.WithContext(ctx).Where("email <> ?", email).Find(&users).Error
	return users, err
}

func (r *SQLUsers) SetStatus(ctx context.Context, email string, status models.UserStatus) (models.UpdateResult, error) {
	defer metrics.ObserveDBQuery("users", "update", time.Now())

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Update("status", status)
	return rowsUpdated(res.RowsAffected), res.Error
}

func (r *SQLUsers) SetRole(ctx context.Context, email string, role models.Role, status models.UserStatus) (models.UpdateResult, error) {
	defer metrics.ObserveDBQuery("users", "update", time.Now())

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).
		Updates(map[string]any{"role": role, "status": status})
	return rowsUpdated(res.RowsAffected), res.Error
}

type SQLPlants struct{ db *gorm.DB }

func (r *SQLPlants) Insert(ctx context.Context, p *models.Plant) (models.InsertResult, error) {
	defer metrics.ObserveDBQuery("plants", "insert", time.Now())

	p.ID = models.NewID()
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return models.InsertResult{}, fmt.Errorf("repositories: plants insert: %w", err)
	}
	return models.InsertResult{Acknowledged: true, InsertedID: p.ID}, nil
}

func (r *SQLPlants) List(ctx context.Context, limit int) ([]models.Plant, error) {
	defer metrics.ObserveDBQuery("plants", "find", time.Now())

	plants := make([]models.Plant, 0)
	err := r.db.WithContext(ctx).Limit(limit).Find(&plants).Error
	return plants, err
}

func (r *SQLPlants) FindByID(ctx context.Context, id string) (*models.Plant, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	defer metrics.ObserveDBQuery("plants", "find", time.Now())

	var p models.Plant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *SQLPlants) ListBySeller(ctx context.Context, email string) ([]models.Plant, error) {
	defer metrics.ObserveDBQuery("plants", "find", time.Now())

	plants := make([]models.Plant, 0)
	err := r.db.WithContext(ctx).Where("seller_email = ?", email).Find(&plants).Error
	return plants, err
}

func (r *SQLPlants) Delete(ctx context.Context, id string) (models.DeleteResult, error) {
	if err := checkID(id); err != nil {
		return models.DeleteResult{}, err
	}
	defer metrics.ObserveDBQuery("plants", "delete", time.Now())

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Plant{})
	return models.DeleteResult{Acknowledged: res.Error == nil, DeletedCount: res.RowsAffected}, res.Error
}

func (r *SQLPlants) AdjustQuantity(ctx context.Context, id string, delta int) (models.UpdateResult, error) {
	if err := checkID(id); err != nil {
		return models.UpdateResult{}, err
	}
	defer metrics.ObserveDBQuery("plants", "update", time.Now())

	res := r.db.WithContext(ctx).Model(&models.Plant{}).Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))
	return rowsUpdated(res.RowsAffected), res.Error
}

func (r *SQLPlants) Reserve(ctx context.Context, id string, qty int) error {
	if err := checkID(id); err != nil {
		return err
	}
	defer metrics.ObserveDBQuery("plants", "update", time.Now())

	db := r.db.WithContext(ctx)
	res := db.Model(&models.Plant{}).Where("id = ? AND quantity >= ?", id, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := db.Model(&models.Plant{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrInsufficientStock
}

type SQLOrders struct{ db *gorm.DB }

func (r *SQLOrders) Insert(ctx context.Context, o *models.Order) (models.InsertResult, error) {
	defer metrics.ObserveDBQuery("orders", "insert", time.Now())

	o.ID = models.NewID()
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		return models.InsertResult{}, fmt.Errorf("repositories: orders insert: %w", err)
	}
	return models.InsertResult{Acknowledged: true, InsertedID: o.ID}, nil
}

func (r *SQLOrders) FindByID(ctx context.Context, id string) (*models.Order, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	defer metrics.ObserveDBQuery("orders", "find", time.Now())

	var o models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *SQLOrders) SetStatus(ctx context.Context, id, status string) (models.UpdateResult, error) {
	if err := checkID(id); err != nil {
		return models.UpdateResult{}, err
	}
	defer metrics.ObserveDBQuery("orders", "update", time.Now())

	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	return rowsUpdated(res.RowsAffected), res.Error
}

func (r *SQLOrders) Delete(ctx context.Context, id string) (models.DeleteResult, error) {
	if err := checkID(id); err != nil {
		return models.DeleteResult{}, err
	}
	defer metrics.ObserveDBQuery("orders", "delete", time.Now())

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{})
	return models.DeleteResult{Acknowledged: res.Error == nil, DeletedCount: res.RowsAffected}, res.Error
}

// The inner join plays the role of the Mongo $unwind: orders whose plant
// no longer exists produce no row.
func (r *SQLOrders) CustomerHistory(ctx context.Context, email string) ([]models.OrderView, error) {
	return r.history(ctx, "orders.customer_email = ?", email,
		"orders.*, plants.name AS name, plants.image AS image, plants.category AS category")
}

func (r *SQLOrders) SellerHistory(ctx context.Context, email string) ([]models.OrderView, error) {
	return r.history(ctx, "orders.seller = ?", email, "orders.*, plants.name AS name")
}

func (r *SQLOrders) history(ctx context.Context, where, email, selectCols string) ([]models.OrderView, error) {
	defer metrics.ObserveDBQuery("orders", "aggregate", time.Now())

	views := make([]models.OrderView, 0)
	err := r.db.WithContext(ctx).Table("orders").
		Select(selectCols).
		Joins("JOIN plants ON plants.id = orders.plant_id").
		Where(where, email).
		Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("repositories: orders history: %w", err)
	}
	return views, nil
}
