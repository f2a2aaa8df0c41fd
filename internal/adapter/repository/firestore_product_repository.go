package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

const productsCollection = "products"

type firestoreProductRepository struct {
	client *firestore.Client
}

func NewFirestoreProductRepository(client *firestore.Client) repository.ProductRepository {
	return &firestoreProductRepository{
		client: client,
	}
}

// Create is only used for seeding; listings are owned by the listing service.
func (r *firestoreProductRepository) Create(ctx context.Context, product *entity.Product) error {
	ref := r.client.Collection(productsCollection).NewDoc()
	if product.ID != "" {
		ref = r.client.Collection(productsCollection).Doc(product.ID)
	}
	product.ID = ref.ID

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := ref.Set(ctx, product); err != nil {
		return errors.Internal("Failed to create product", err)
	}
	return nil
}

func (r *firestoreProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	snap, err := r.client.Collection(productsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Product", err)
		}
		return nil, errors.Internal("Failed to get product", err)
	}
	return decodeProduct(snap)
}

// UpdateStatus leaves the document untouched when it already has productStatus,
// so repeated SOLD_OUT marks do not bump updatedAt.
func (r *firestoreProductRepository) UpdateStatus(ctx context.Context, id string, productStatus string) error {
	ref := r.client.Collection(productsCollection).Doc(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Product", err)
			}
			return err
		}
		product, err := decodeProduct(snap)
		if err != nil {
			return err
		}
		if product.Status == productStatus {
			return nil
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: productStatus},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return appErr
		}
		return errors.Internal("Failed to update product status", err)
	}
	return nil
}

func decodeProduct(snap *firestore.DocumentSnapshot) (*entity.Product, error) {
	var product entity.Product
	if err := snap.DataTo(&product); err != nil {
		return nil, errors.Internal("Failed to parse product data", err)
	}
	product.ID = snap.Ref.ID
	return &product, nil
}
