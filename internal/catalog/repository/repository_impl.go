package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/brewpass/brewpass/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertCategory(ctx context.Context, db *gorm.DB, category *domain.Category) error {
	return db.WithContext(ctx).Create(category).Error
}

func (r *repo) UpdateCategory(ctx context.Context, db *gorm.DB, category *domain.Category) error {
	return db.WithContext(ctx).Save(category).Error
}

func (r *repo) DeleteCategory(ctx context.Context, db *gorm.DB, shopCode string, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("shop_code = ? AND id = ?", shopCode, id).
		Delete(&domain.Category{})
	return res.RowsAffected, res.Error
}

func (r *repo) FindCategory(ctx context.Context, db *gorm.DB, shopCode string, id snowflake.ID) (*domain.Category, error) {
	var category domain.Category
	err := db.WithContext(ctx).
		Where("shop_code = ? AND id = ?", shopCode, id).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *repo) ListCategories(ctx context.Context, db *gorm.DB, shopCode string, activeOnly bool) ([]domain.Category, error) {
	stmt := db.WithContext(ctx).
		Where("shop_code = ?", shopCode).
		Order("sort_order asc, id asc")
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	var categories []domain.Category
	if err := stmt.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repo) CountProductsInCategory(ctx context.Context, db *gorm.DB, shopCode string, categoryID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("shop_code = ? AND category_id = ?", shopCode, categoryID).
		Count(&count).Error
	return count, err
}

func (r *repo) InsertProduct(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) UpdateProduct(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Omit("Variants", "Addons").Save(product).Error
}

func (r *repo) DeleteProduct(ctx context.Context, db *gorm.DB, shopCode string, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Select("Variants", "Addons").
		Where("shop_code = ? AND id = ?", shopCode, id).
		Delete(&domain.Product{ID: id})
	return res.RowsAffected, res.Error
}

func (r *repo) FindProduct(ctx context.Context, db *gorm.DB, shopCode string, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc, id asc") }).
		Preload("Addons", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc, id asc") }).
		Where("shop_code = ? AND id = ?", shopCode, id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) ListProducts(ctx context.Context, db *gorm.DB, shopCode string, categoryID *snowflake.ID, activeOnly bool) ([]domain.Product, error) {
	stmt := db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc, id asc") }).
		Preload("Addons", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc, id asc") }).
		Where("shop_code = ?", shopCode).
		Order("sort_order asc, id asc")
	if categoryID != nil {
		stmt = stmt.Where("category_id = ?", *categoryID)
	}
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	var products []domain.Product
	if err := stmt.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
