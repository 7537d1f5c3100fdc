package repository

import (
	"context"
	"errors"
	"fmt"

	"inventory-svc/models"

	"gorm.io/gorm"
)

var (
	ErrProductExists   = errors.New("product already exists")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmptyOrder      = errors.New("order has no line items")
)

// ProductNotFoundError names the first line item whose product is missing.
type ProductNotFoundError struct {
	Name string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %q not found", e.Name)
}

func (e *ProductNotFoundError) Unwrap() error {
	return ErrProductNotFound
}

// Store provides access to categories, products and orders.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}
	return categories, nil
}

// EnsureCategory returns the first category with the given name, creating it
// when absent. Concurrent calls for a new name may both insert.
func (s *Store) EnsureCategory(ctx context.Context, name string) (*models.Category, error) {
	return ensureCategory(s.db.WithContext(ctx), name)
}

func ensureCategory(tx *gorm.DB, name string) (*models.Category, error) {
	category := models.Category{Name: name}
	// string condition: a struct condition would drop an empty name
	if err := tx.Where("name = ?", name).FirstOrCreate(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to ensure category: %w", err)
	}
	return &category, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := s.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

// CreateProduct inserts a product, creating its category on first use. The
// product carries a copy of the category name.
func (s *Store) CreateProduct(ctx context.Context, name string, price float64, category string, quantity int) (*models.Product, error) {
	var product models.Product

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := productExists(tx, name)
		if err != nil {
			return err
		}
		if exists {
			return ErrProductExists
		}

		cat, err := ensureCategory(tx, category)
		if err != nil {
			return err
		}

		product = models.Product{
			Name:     name,
			Price:    price,
			Quantity: quantity,
			Category: cat.Name,
		}
		if err := tx.Create(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrProductExists
			}
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func productExists(tx *gorm.DB, name string) (bool, error) {
	var count int64
	if err := tx.Model(&models.Product{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product: %w", err)
	}
	return count > 0, nil
}

func findProductByName(tx *gorm.DB, name string) (*models.Product, error) {
	var product models.Product
	if err := tx.Where("name = ?", name).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ProductNotFoundError{Name: name}
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if err := s.db.WithContext(ctx).Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	return orders, nil
}

func (s *Store) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &order, nil
}

// CreateOrder resolves every line against the current product price and
// stores the order in a single transaction. If any product is missing nothing
// is written and a *ProductNotFoundError is returned.
func (s *Store) CreateOrder(ctx context.Context, customerName string, lines []models.OrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := make([]models.LineItem, 0, len(lines))
		var total float64

		for _, line := range lines {
			product, err := findProductByName(tx, line.Name)
			if err != nil {
				return err
			}

			lineTotal := product.Price * float64(line.Quantity)
			items = append(items, models.LineItem{
				Name:      product.Name,
				Quantity:  line.Quantity,
				Price:     product.Price,
				LineTotal: lineTotal,
			})
			total += lineTotal
		}

		order = models.Order{
			CustomerName: customerName,
			Products:     items,
			TotalPrice:   total,
			Status:       models.OrderStatusComplete,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}
