package services

import (
	"context"
	"strings"

	"casestore/internal/apperrors"
	"casestore/internal/models"
	"casestore/internal/repositories"
	"casestore/internal/validation"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts returns one page of the catalog. Only admins may see inactive products.
func (s *ProductService) ListProducts(ctx context.Context, requester *models.User, filter models.ProductFilter) (models.PageResult[models.Product], error) {
	if filter.IncludeInactive && !requester.IsAdmin() {
		filter.IncludeInactive = false
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return models.PageResult[models.Product]{}, apperrors.Invalid("category", "category is not a valid product category")
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return models.PageResult[models.Product]{}, apperrors.New(apperrors.ErrInvalidArgument, "minPrice cannot exceed maxPrice")
	}
	filter.Page = filter.Page.Normalize()

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return models.PageResult[models.Product]{}, err
	}
	return models.PageResult[models.Product]{Items: items, Total: total, Page: filter.Page}, nil
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct validates the input and stores a new product. Products are active unless stated otherwise.
func (s *ProductService) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if err := validation.Validate(in); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		Category:         in.Category,
		Price:            in.Price,
		Stock:            in.Stock,
		Images:           nonNil(in.Images),
		Brand:            in.Brand,
		Material:         in.Material,
		Color:            in.Color,
		CompatibleModels: in.CompatibleModels,
		Tags:             nonNil(in.Tags),
		IsActive:         in.IsActive == nil || *in.IsActive,
	}
	if product.CompatibleModels == nil {
		product.CompatibleModels = []models.CompatibleModel{}
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies the non-nil fields of in. Rating and sold count are never client-writable.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in models.ProductUpdate) (*models.Product, error) {
	if err := validation.Validate(in); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var fields []string
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
		fields = append(fields, "name")
	}
	if in.Description != nil {
		product.Description = *in.Description
		fields = append(fields, "description")
	}
	if in.Category != nil {
		product.Category = *in.Category
		fields = append(fields, "category")
	}
	if in.Price != nil {
		product.Price = *in.Price
		fields = append(fields, "price")
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
		fields = append(fields, "stock")
	}
	if in.Images != nil {
		product.Images = nonNil(*in.Images)
		fields = append(fields, "images")
	}
	if in.Brand != nil {
		product.Brand = *in.Brand
		fields = append(fields, "brand")
	}
	if in.Material != nil {
		product.Material = *in.Material
		fields = append(fields, "material")
	}
	if in.Color != nil {
		product.Color = *in.Color
		fields = append(fields, "color")
	}
	if in.CompatibleModels != nil {
		product.CompatibleModels = *in.CompatibleModels
		fields = append(fields, "compatible_models")
	}
	if in.Tags != nil {
		product.Tags = nonNil(*in.Tags)
		fields = append(fields, "tags")
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
		fields = append(fields, "is_active")
	}

	if len(fields) == 0 {
		return product, nil
	}
	if err := s.repo.Update(ctx, product, fields...); err != nil {
		return nil, err
	}
	return product, nil
}

// AdjustStock adds a signed quantity to the stock. Zero is rejected.
func (s *ProductService) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	if delta == 0 {
		return nil, apperrors.New(apperrors.ErrInvalidArgument, "quantity must be a non-zero number")
	}
	return s.repo.AdjustStock(ctx, id, delta)
}

// AddTag appends a tag. Duplicates are kept.
func (s *ProductService) AddTag(ctx context.Context, id, tag string) (*models.Product, error) {
	tag = strings.TrimSpace(tag)
	if err := validation.Validate(models.TagRequest{Tag: tag}); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Tags = append(product.Tags, tag)
	if err := s.repo.Update(ctx, product, "tags"); err != nil {
		return nil, err
	}
	return product, nil
}

// RemoveTag drops every occurrence of tag.
func (s *ProductService) RemoveTag(ctx context.Context, id, tag string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(product.Tags))
	for _, t := range product.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(product.Tags) {
		return product, nil
	}
	product.Tags = kept
	if err := s.repo.Update(ctx, product, "tags"); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
