package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"casestore/internal/apperrors"
	"casestore/internal/models"
	"casestore/internal/repositories"
	"casestore/internal/validation"
)

// DefaultReviewsLimit is the page size of a product's review listing.
const DefaultReviewsLimit = 10

// ReviewService handles reviews and keeps the product rating aggregate in sync with them.
type ReviewService struct {
	reviewRepo  repositories.ReviewRepository
	productRepo repositories.ProductRepository
	orderRepo   repositories.OrderRepository
	userRepo    repositories.UserRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviewRepo repositories.ReviewRepository, productRepo repositories.ProductRepository, orderRepo repositories.OrderRepository, userRepo repositories.UserRepository) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
	}
}

// ListForProduct returns one page of a product's reviews with the reviewers' names.
func (s *ReviewService) ListForProduct(ctx context.Context, productID, sort string, page models.Page) (models.PageResult[models.Review], error) {
	if page.Limit < 1 {
		page.Limit = DefaultReviewsLimit
	}
	page = page.Normalize()
	reviews, total, err := s.reviewRepo.ListByProduct(ctx, models.ReviewFilter{ProductID: productID, Sort: sort, Page: page})
	if err != nil {
		return models.PageResult[models.Review]{}, err
	}

	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.UserID)
	}
	users, err := s.userRepo.GetSummaries(ctx, ids)
	if err != nil {
		return models.PageResult[models.Review]{}, err
	}
	for i := range reviews {
		reviews[i].User = users[reviews[i].UserID]
	}
	return models.PageResult[models.Review]{Items: reviews, Total: total, Page: page}, nil
}

// CreateReview stores a verified review. Only buyers who received the product may review it, once.
func (s *ReviewService) CreateReview(ctx context.Context, author *models.User, req models.CreateReviewRequest) (*models.Review, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "Product not found")
		}
		return nil, err
	}

	delivered, err := s.orderRepo.HasDeliveredOrderWith(ctx, author.ID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !delivered {
		return nil, apperrors.New(apperrors.ErrForbidden, "Only customers with delivered orders can leave a review")
	}

	exists, err := s.reviewRepo.ExistsForUserProduct(ctx, author.ID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.New(apperrors.ErrConflict, "You have already reviewed this product")
	}

	review := &models.Review{
		UserID:    author.ID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Title:     strings.TrimSpace(req.Title),
		Comment:   strings.TrimSpace(req.Comment),
		Verified:  true,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	if err := s.RecomputeRating(ctx, review.ProductID); err != nil {
		return nil, err
	}
	review.User = author.Summary()
	return review, nil
}

// UpdateReview changes the rating, title or comment of the caller's own review.
func (s *ReviewService) UpdateReview(ctx context.Context, author *models.User, id string, req models.UpdateReviewRequest) (*models.Review, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != author.ID {
		return nil, apperrors.New(apperrors.ErrForbidden, "Not authorized to update this review")
	}

	var fields []string
	if req.Rating != nil {
		review.Rating = *req.Rating
		fields = append(fields, "rating")
	}
	if req.Title != nil {
		review.Title = strings.TrimSpace(*req.Title)
		fields = append(fields, "title")
	}
	if req.Comment != nil {
		review.Comment = strings.TrimSpace(*req.Comment)
		fields = append(fields, "comment")
	}
	if len(fields) > 0 {
		if err := s.reviewRepo.Update(ctx, review, fields...); err != nil {
			return nil, err
		}
		if err := s.RecomputeRating(ctx, review.ProductID); err != nil {
			return nil, err
		}
	}
	review.User = author.Summary()
	return review, nil
}

// DeleteReview removes a review. Admins may delete any review.
func (s *ReviewService) DeleteReview(ctx context.Context, requester *models.User, id string) error {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !requester.CanAccess(review.UserID) {
		return apperrors.New(apperrors.ErrForbidden, "Not authorized to delete this review")
	}
	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.RecomputeRating(ctx, review.ProductID)
}

// RecomputeRating replaces the product's rating with the aggregate of all its reviews.
// A product that no longer exists is ignored.
func (s *ReviewService) RecomputeRating(ctx context.Context, productID string) error {
	avg, count, err := s.reviewRepo.RatingForProduct(ctx, productID)
	if err != nil {
		return err
	}
	rating := models.Rating{Average: roundTo(avg, 1), Count: count}
	if count == 0 {
		rating = models.Rating{}
	}
	if err := s.productRepo.UpdateRating(ctx, productID, rating); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to update rating of product %s: %w", productID, err)
	}
	return nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
