package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	catalogdomain "github.com/brewpass/brewpass/internal/catalog/domain"
	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
)

func (s *Server) GetMenu(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	menu, err := s.catalogSvc.Menu(c.Request.Context(), shop.Code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": menu})
}

func (s *Server) ListCategories(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	categories, err := s.catalogSvc.ListCategories(c.Request.Context(), shop.Code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

type createCategoryRequest struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func (s *Server) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	category, err := s.catalogSvc.CreateCategory(c.Request.Context(), catalogdomain.CreateCategoryRequest{
		ShopCode:  shop.Code,
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": category})
}

type updateCategoryRequest struct {
	Name      *string `json:"name"`
	SortOrder *int    `json:"sort_order"`
	IsActive  *bool   `json:"is_active"`
}

func (s *Server) UpdateCategory(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	category, err := s.catalogSvc.UpdateCategory(c.Request.Context(), catalogdomain.UpdateCategoryRequest{
		ShopCode:  shop.Code,
		ID:        id,
		Name:      req.Name,
		SortOrder: req.SortOrder,
		IsActive:  req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": category})
}

func (s *Server) DeleteCategory(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if err := s.catalogSvc.DeleteCategory(c.Request.Context(), shop.Code, id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) ListProducts(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var categoryID *snowflake.ID
	if raw := c.Query("category_id"); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		categoryID = &id
	}

	products, err := s.catalogSvc.ListProducts(c.Request.Context(), shop.Code, categoryID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products})
}

func (s *Server) GetProduct(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	product, err := s.catalogSvc.GetProduct(c.Request.Context(), shop.Code, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

type createProductRequest struct {
	CategoryID  string                       `json:"category_id"`
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	Price       string                       `json:"price"`
	ImageURL    string                       `json:"image_url"`
	SortOrder   int                          `json:"sort_order"`
	Variants    []catalogdomain.VariantInput `json:"variants"`
	Addons      []catalogdomain.AddonInput   `json:"addons"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	categoryID, err := snowflake.ParseString(req.CategoryID)
	if err != nil {
		AbortWithError(c, catalogdomain.ErrInvalidCategory)
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	product, err := s.catalogSvc.CreateProduct(c.Request.Context(), catalogdomain.CreateProductRequest{
		ShopCode:    shop.Code,
		CategoryID:  categoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
		Variants:    req.Variants,
		Addons:      req.Addons,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": product})
}

type updateProductRequest struct {
	CategoryID  *string `json:"category_id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	ImageURL    *string `json:"image_url"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

func (s *Server) UpdateProduct(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var categoryID *snowflake.ID
	if req.CategoryID != nil {
		parsed, err := snowflake.ParseString(*req.CategoryID)
		if err != nil {
			AbortWithError(c, catalogdomain.ErrInvalidCategory)
			return
		}
		categoryID = &parsed
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	product, err := s.catalogSvc.UpdateProduct(c.Request.Context(), catalogdomain.UpdateProductRequest{
		ShopCode:    shop.Code,
		ID:          id,
		CategoryID:  categoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if err := s.catalogSvc.DeleteProduct(c.Request.Context(), shop.Code, id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

// parseIDParam reads the :id route parameter as a snowflake ID.
func parseIDParam(c *gin.Context) (snowflake.ID, error) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		return 0, memberdomain.ErrInvalidID
	}
	return id, nil
}
