package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/brewpass/brewpass/internal/catalog/domain"
	"github.com/brewpass/brewpass/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  catalogdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  catalogdomain.Repository
}

func New(p Params) catalogdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) CreateCategory(ctx context.Context, req catalogdomain.CreateCategoryRequest) (catalogdomain.Category, error) {
	if req.ShopCode == "" {
		return catalogdomain.Category{}, catalogdomain.ErrInvalidShop
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return catalogdomain.Category{}, catalogdomain.ErrInvalidName
	}

	now := s.clock.Now()
	category := catalogdomain.Category{
		ID:        s.genID.Generate(),
		ShopCode:  req.ShopCode,
		Name:      name,
		SortOrder: req.SortOrder,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertCategory(ctx, s.db, &category); err != nil {
		return catalogdomain.Category{}, err
	}
	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, req catalogdomain.UpdateCategoryRequest) (catalogdomain.Category, error) {
	if req.ShopCode == "" {
		return catalogdomain.Category{}, catalogdomain.ErrInvalidShop
	}

	existing, err := s.repo.FindCategory(ctx, s.db, req.ShopCode, req.ID)
	if err != nil {
		return catalogdomain.Category{}, err
	}
	if existing == nil {
		return catalogdomain.Category{}, catalogdomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return catalogdomain.Category{}, catalogdomain.ErrInvalidName
		}
		existing.Name = name
	}
	if req.SortOrder != nil {
		existing.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	existing.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdateCategory(ctx, s.db, existing); err != nil {
		return catalogdomain.Category{}, err
	}
	return *existing, nil
}

func (s *Service) DeleteCategory(ctx context.Context, shopCode string, id snowflake.ID) error {
	if shopCode == "" {
		return catalogdomain.ErrInvalidShop
	}

	count, err := s.repo.CountProductsInCategory(ctx, s.db, shopCode, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return catalogdomain.ErrCategoryNotEmpty
	}

	rows, err := s.repo.DeleteCategory(ctx, s.db, shopCode, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return catalogdomain.ErrNotFound
	}
	return nil
}

func (s *Service) ListCategories(ctx context.Context, shopCode string) ([]catalogdomain.Category, error) {
	if shopCode == "" {
		return nil, catalogdomain.ErrInvalidShop
	}
	return s.repo.ListCategories(ctx, s.db, shopCode, false)
}

func (s *Service) CreateProduct(ctx context.Context, req catalogdomain.CreateProductRequest) (catalogdomain.Product, error) {
	if req.ShopCode == "" {
		return catalogdomain.Product{}, catalogdomain.ErrInvalidShop
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return catalogdomain.Product{}, catalogdomain.ErrInvalidName
	}
	price, err := normalizePrice(req.Price)
	if err != nil {
		return catalogdomain.Product{}, err
	}

	category, err := s.repo.FindCategory(ctx, s.db, req.ShopCode, req.CategoryID)
	if err != nil {
		return catalogdomain.Product{}, err
	}
	if category == nil {
		return catalogdomain.Product{}, catalogdomain.ErrInvalidCategory
	}

	now := s.clock.Now()
	product := catalogdomain.Product{
		ID:          s.genID.Generate(),
		ShopCode:    req.ShopCode,
		CategoryID:  req.CategoryID,
		Name:        name,
		Description: req.Description,
		Price:       price,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, v := range req.Variants {
		delta, err := normalizePrice(v.PriceDelta)
		if err != nil {
			return catalogdomain.Product{}, err
		}
		product.Variants = append(product.Variants, catalogdomain.Variant{
			ID:         s.genID.Generate(),
			ProductID:  product.ID,
			Name:       strings.TrimSpace(v.Name),
			PriceDelta: delta,
			SortOrder:  v.SortOrder,
			CreatedAt:  now,
		})
	}
	for _, a := range req.Addons {
		delta, err := normalizePrice(a.PriceDelta)
		if err != nil {
			return catalogdomain.Product{}, err
		}
		product.Addons = append(product.Addons, catalogdomain.Addon{
			ID:         s.genID.Generate(),
			ProductID:  product.ID,
			Name:       strings.TrimSpace(a.Name),
			PriceDelta: delta,
			SortOrder:  a.SortOrder,
			CreatedAt:  now,
		})
	}

	if err := s.repo.InsertProduct(ctx, s.db, &product); err != nil {
		return catalogdomain.Product{}, err
	}
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, req catalogdomain.UpdateProductRequest) (catalogdomain.Product, error) {
	if req.ShopCode == "" {
		return catalogdomain.Product{}, catalogdomain.ErrInvalidShop
	}

	existing, err := s.repo.FindProduct(ctx, s.db, req.ShopCode, req.ID)
	if err != nil {
		return catalogdomain.Product{}, err
	}
	if existing == nil {
		return catalogdomain.Product{}, catalogdomain.ErrNotFound
	}

	if req.CategoryID != nil {
		category, err := s.repo.FindCategory(ctx, s.db, req.ShopCode, *req.CategoryID)
		if err != nil {
			return catalogdomain.Product{}, err
		}
		if category == nil {
			return catalogdomain.Product{}, catalogdomain.ErrInvalidCategory
		}
		existing.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return catalogdomain.Product{}, catalogdomain.ErrInvalidName
		}
		existing.Name = name
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Price != nil {
		price, err := normalizePrice(*req.Price)
		if err != nil {
			return catalogdomain.Product{}, err
		}
		existing.Price = price
	}
	if req.ImageURL != nil {
		existing.ImageURL = *req.ImageURL
	}
	if req.SortOrder != nil {
		existing.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	existing.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdateProduct(ctx, s.db, existing); err != nil {
		return catalogdomain.Product{}, err
	}
	return *existing, nil
}

func (s *Service) DeleteProduct(ctx context.Context, shopCode string, id snowflake.ID) error {
	if shopCode == "" {
		return catalogdomain.ErrInvalidShop
	}
	rows, err := s.repo.DeleteProduct(ctx, s.db, shopCode, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return catalogdomain.ErrNotFound
	}
	return nil
}

func (s *Service) GetProduct(ctx context.Context, shopCode string, id snowflake.ID) (catalogdomain.Product, error) {
	if shopCode == "" {
		return catalogdomain.Product{}, catalogdomain.ErrInvalidShop
	}
	product, err := s.repo.FindProduct(ctx, s.db, shopCode, id)
	if err != nil {
		return catalogdomain.Product{}, err
	}
	if product == nil {
		return catalogdomain.Product{}, catalogdomain.ErrNotFound
	}
	return *product, nil
}

func (s *Service) ListProducts(ctx context.Context, shopCode string, categoryID *snowflake.ID) ([]catalogdomain.Product, error) {
	if shopCode == "" {
		return nil, catalogdomain.ErrInvalidShop
	}
	return s.repo.ListProducts(ctx, s.db, shopCode, categoryID, false)
}

func (s *Service) Menu(ctx context.Context, shopCode string) ([]catalogdomain.MenuCategory, error) {
	if shopCode == "" {
		return nil, catalogdomain.ErrInvalidShop
	}

	categories, err := s.repo.ListCategories(ctx, s.db, shopCode, true)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ListProducts(ctx, s.db, shopCode, nil, true)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[snowflake.ID][]catalogdomain.Product, len(categories))
	for _, p := range products {
		byCategory[p.CategoryID] = append(byCategory[p.CategoryID], p)
	}

	menu := make([]catalogdomain.MenuCategory, 0, len(categories))
	for _, c := range categories {
		menu = append(menu, catalogdomain.MenuCategory{
			Category: c,
			Products: byCategory[c.ID],
		})
	}
	return menu, nil
}

// normalizePrice validates a decimal string and reformats it with two
// fraction digits.
func normalizePrice(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "0.00", nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		return "", catalogdomain.ErrInvalidPrice
	}
	return strconv.FormatFloat(value, 'f', 2, 64), nil
}
