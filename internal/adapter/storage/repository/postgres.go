package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopmart/orderengine/internal/adapter/metrics"
	"github.com/shopmart/orderengine/internal/adapter/storage"
	"github.com/shopmart/orderengine/internal/core/domain"
)

type Repository struct {
	db      *storage.DB
	metrics *metrics.Engine
}

func NewRepository(db *storage.DB, m *metrics.Engine) (*Repository, error) {
	return &Repository{db: db, metrics: m}, nil
}

// dbError marks an infrastructure failure as ErrPersistence so callers
// can tell a rolled-back transaction, safe to retry whole, from a
// business refusal.
func dbError(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	statement := r.db.QueryBuilder.
		Insert("users").
		Columns("login", "password", "role", "is_frequent_customer").
		Values(user.Login, user.Password, user.Role, user.IsFrequentCustomer).
		Suffix("RETURNING id")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&user.ID)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrConflictingData
		}
		return nil, dbError(err)
	}
	return user, nil
}

func (r *Repository) GetUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	return r.getUser(ctx, sq.Eq{"login": login})
}

func (r *Repository) GetUser(ctx context.Context, id uint64) (*domain.User, error) {
	return r.getUser(ctx, sq.Eq{"id": id})
}

func (r *Repository) getUser(ctx context.Context, where sq.Eq) (*domain.User, error) {
	statement := r.db.QueryBuilder.
		Select("id", "login", "password", "role", "is_frequent_customer").
		From("users").
		Where(where)

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	user := domain.User{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&user.ID,
		&user.Login,
		&user.Password,
		&user.Role,
		&user.IsFrequentCustomer,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDataNotFound
		}
		return nil, dbError(err)
	}

	return &user, nil
}

func (r *Repository) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	statement := r.db.QueryBuilder.
		Select("id", "name", "category", "price", "stock", "is_active").
		From("products").
		Where(sq.Eq{"id": id})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	product := domain.Product{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Price,
		&product.Stock,
		&product.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDataNotFound
		}
		return nil, dbError(err)
	}

	return &product, nil
}

func (r *Repository) ListActiveProducts(ctx context.Context) ([]*domain.Product, error) {
	statement := r.db.QueryBuilder.
		Select("id", "name", "category", "price", "stock", "is_active").
		From("products").
		Where(sq.Eq{"is_active": true}).
		OrderBy("id")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	list := make([]*domain.Product, 0)
	for rows.Next() {
		product := domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Category,
			&product.Price,
			&product.Stock,
			&product.IsActive,
		)
		if err != nil {
			return nil, dbError(err)
		}
		list = append(list, &product)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err)
	}

	return list, nil
}

func (r *Repository) TopSellingProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	statement := r.db.QueryBuilder.
		Select("oi.product_name", "SUM(oi.quantity) AS units_sold").
		From("order_items oi").
		Join("orders o ON o.id = oi.order_id").
		Where(sq.Eq{"o.status": domain.OrderStatusApproved}).
		GroupBy("oi.product_name").
		OrderBy("units_sold DESC").
		Limit(uint64(limit))

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	list := make([]domain.ProductSales, 0, limit)
	for rows.Next() {
		row := domain.ProductSales{}
		if err := rows.Scan(&row.ProductName, &row.UnitsSold); err != nil {
			return nil, dbError(err)
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err)
	}

	return list, nil
}

func (r *Repository) FrequentCustomers(ctx context.Context, limit int) ([]domain.CustomerOrders, error) {
	statement := r.db.QueryBuilder.
		Select("u.id", "u.login", "COUNT(o.id) AS total_orders").
		From("orders o").
		Join("users u ON u.id = o.user_id").
		Where(sq.Eq{"o.status": domain.OrderStatusApproved}).
		GroupBy("u.id", "u.login").
		OrderBy("total_orders DESC").
		Limit(uint64(limit))

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	list := make([]domain.CustomerOrders, 0, limit)
	for rows.Next() {
		row := domain.CustomerOrders{}
		if err := rows.Scan(&row.UserID, &row.Login, &row.Orders); err != nil {
			return nil, dbError(err)
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err)
	}

	return list, nil
}

func (r *Repository) AppendAudit(ctx context.Context, rec *domain.AuditRecord) error {
	statement := r.db.QueryBuilder.
		Insert("audit_log").
		Columns("entity", "entity_id", "action", "actor_id", "old_value", "new_value", "logged_at").
		Values(rec.Entity, rec.EntityID, rec.Action, rec.ActorID, rec.OldValue, rec.NewValue, rec.LoggedAt)

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		return dbError(err)
	}
	return nil
}
