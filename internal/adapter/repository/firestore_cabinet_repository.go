package repository

import (
	"context"
	"math/rand/v2"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

const kioskCabinetsCollection = "kiosk_cabinets"

type cabinetDoc struct {
	Number       int       `firestore:"number"`
	SerialNumber string    `firestore:"serialNumber"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

type firestoreCabinetRepository struct {
	client *firestore.Client
	count  int
}

func NewFirestoreCabinetRepository(client *firestore.Client, count int) repository.CabinetRepository {
	return &firestoreCabinetRepository{
		client: client,
		count:  count,
	}
}

func (r *firestoreCabinetRepository) refs() []*firestore.DocumentRef {
	refs := make([]*firestore.DocumentRef, r.count)
	for i := range refs {
		refs[i] = r.client.Collection(kioskCabinetsCollection).Doc(strconv.Itoa(i + 1))
	}
	return refs
}

func (r *firestoreCabinetRepository) Acquire(ctx context.Context, serial string) (int, error) {
	refs := r.refs()
	var cabinet int

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.GetAll(refs)
		if err != nil {
			return err
		}

		free := make([]int, 0, len(docs))
		for i, doc := range docs {
			if !doc.Exists() {
				free = append(free, i)
				continue
			}
			var c cabinetDoc
			if err := doc.DataTo(&c); err != nil {
				return err
			}
			if c.SerialNumber == serial {
				cabinet = i + 1
				return nil
			}
			if c.SerialNumber == "" {
				free = append(free, i)
			}
		}
		if len(free) == 0 {
			return errors.ConflictWith("No cabinet available", repository.ErrNoCabinet)
		}

		picked := free[rand.IntN(len(free))]
		cabinet = picked + 1
		return tx.Set(refs[picked], cabinetDoc{
			Number:       cabinet,
			SerialNumber: serial,
			UpdatedAt:    time.Now(),
		})
	})
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return 0, err
		}
		return 0, errors.Internal("Failed to acquire cabinet", err)
	}

	return cabinet, nil
}

func (r *firestoreCabinetRepository) Release(ctx context.Context, cabinet int, serial string) error {
	if cabinet < 1 || cabinet > r.count {
		return errors.BadRequest("cabinet number out of range", nil)
	}
	docRef := r.client.Collection(kioskCabinetsCollection).Doc(strconv.Itoa(cabinet))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return err
		}

		var c cabinetDoc
		if err := doc.DataTo(&c); err != nil {
			return err
		}
		if c.SerialNumber != serial {
			return nil
		}

		c.SerialNumber = ""
		c.UpdatedAt = time.Now()
		return tx.Set(docRef, c)
	})
	if err != nil {
		return errors.Internal("Failed to release cabinet", err)
	}

	return nil
}

func (r *firestoreCabinetRepository) Occupancy(ctx context.Context) (map[int]string, error) {
	docs, err := r.client.GetAll(ctx, r.refs())
	if err != nil {
		return nil, errors.Internal("Failed to read cabinets", err)
	}

	occupied := make(map[int]string)
	for i, doc := range docs {
		if !doc.Exists() {
			continue
		}
		var c cabinetDoc
		if err := doc.DataTo(&c); err != nil {
			return nil, errors.Internal("Failed to parse cabinet data", err)
		}
		if c.SerialNumber != "" {
			occupied[i+1] = c.SerialNumber
		}
	}
	return occupied, nil
}
