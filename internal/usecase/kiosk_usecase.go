package usecase

import (
	"context"
	stderrors "errors"
	"time"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/internal/domain/service"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
)

const (
	maxSerialAttempts = 10

	kioskActionStart = "seller start"
)

type KioskUseCase struct {
	kioskRepo   repository.KioskTransactionRepository
	cabinetRepo repository.CabinetRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	serials     service.SerialGenerator
	events      EventPublisher
	serialTTL   time.Duration
	now         func() time.Time
}

func NewKioskUseCase(
	kioskRepo repository.KioskTransactionRepository,
	cabinetRepo repository.CabinetRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	serials service.SerialGenerator,
	events EventPublisher,
	serialTTL time.Duration,
) *KioskUseCase {
	return &KioskUseCase{
		kioskRepo:   kioskRepo,
		cabinetRepo: cabinetRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		serials:     serials,
		events:      events,
		serialTTL:   serialTTL,
		now:         time.Now,
	}
}

// KioskTransactionDetail is what the kiosk terminal shows after a serial lookup.
type KioskTransactionDetail struct {
	*entity.KioskTransaction
	ProductName string `json:"product_name"`
	SellerName  string `json:"seller_name"`
	Price       int64  `json:"price"`
}

type KioskStatusView struct {
	ProductID     string             `json:"product_id"`
	Status        entity.KioskStatus `json:"status"`
	SerialNumber  string             `json:"serial_number,omitempty"`
	CabinetNumber int                `json:"cabinet_number,omitempty"`
	CreatedAt     *time.Time         `json:"created_at,omitempty"`
	ExpiresAt     *time.Time         `json:"expires_at,omitempty"`
}

// SellerStart returns the product's live transaction or opens a new one.
// created is false on the idempotent path.
func (uc *KioskUseCase) SellerStart(ctx context.Context, identity entity.Identity, productID string) (*entity.KioskTransaction, bool, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, false, err
	}
	if product.SellerID != identity.UserID {
		return nil, false, errors.Forbidden("Only the seller can start a kiosk transaction", nil)
	}
	if product.IsSoldOut() {
		return nil, false, errors.InvalidState(kioskActionStart, entity.ProductStatusOnSale, product.Status)
	}

	for attempt := 1; attempt <= maxSerialAttempts; attempt++ {
		now := uc.now()
		candidate := &entity.KioskTransaction{
			SerialNumber: uc.serials.Next(),
			ProductID:    product.ID,
			SellerID:     product.SellerID,
			Status:       entity.KioskStatusWaiting,
			ExpiresAt:    now.Add(uc.serialTTL),
		}

		tx, created, err := uc.kioskRepo.StartOrGet(ctx, candidate, now)
		if err != nil {
			if stderrors.Is(err, repository.ErrSerialTaken) {
				logger.Debug("Serial %s already issued, regenerating (attempt %d)", candidate.SerialNumber, attempt)
				continue
			}
			return nil, false, err
		}

		if created {
			logger.Info("Kiosk transaction %s started for product %s", tx.SerialNumber, tx.ProductID)
			uc.publish(tx, kioskActionStart)
		}
		return tx, created, nil
	}

	return nil, false, errors.ConflictWith("Could not allocate a unique serial number", repository.ErrSerialTaken)
}

// Lookup is the kiosk terminal's serial check.
func (uc *KioskUseCase) Lookup(ctx context.Context, serial string) (*KioskTransactionDetail, error) {
	tx, err := uc.load(ctx, serial)
	if err != nil {
		return nil, err
	}

	product, err := uc.productRepo.GetByID(ctx, tx.ProductID)
	if err != nil {
		return nil, err
	}

	detail := &KioskTransactionDetail{
		KioskTransaction: tx,
		ProductName:      product.Name,
		Price:            product.Price,
	}
	if seller, err := uc.userRepo.GetByID(ctx, tx.SellerID); err == nil {
		detail.SellerName = seller.DisplayName()
	} else {
		logger.Warn("Seller %s of kiosk transaction %s not found: %v", tx.SellerID, serial, err)
	}
	return detail, nil
}

// ConfirmDeposit opens a free cabinet for the seller's item.
func (uc *KioskUseCase) ConfirmDeposit(ctx context.Context, serial string) (*entity.KioskTransaction, error) {
	current, err := uc.load(ctx, serial)
	if err != nil {
		return nil, err
	}
	if current.Status != entity.KioskStatusWaiting {
		err := errors.InvalidState(string(entity.KioskActionDeposit), string(entity.KioskStatusWaiting), string(current.Status))
		logger.LogTransitionError(logger.KindKiosk, serial, string(entity.KioskActionDeposit), err)
		return nil, err
	}

	cabinet, err := uc.cabinetRepo.Acquire(ctx, serial)
	if err != nil {
		return nil, err
	}

	tx, err := uc.transition(ctx, serial, entity.KioskActionDeposit, func(t *entity.KioskTransaction) error {
		t.CabinetNumber = cabinet
		return nil
	})
	if err != nil {
		uc.releaseUnheld(ctx, cabinet, serial)
		return nil, err
	}

	logger.Info("Kiosk transaction %s deposited in cabinet %d", serial, cabinet)
	return tx, nil
}

// SellerComplete acknowledges the deposit. It does not change the status.
func (uc *KioskUseCase) SellerComplete(ctx context.Context, identity entity.Identity, serial string) (*entity.KioskTransaction, error) {
	return uc.transition(ctx, serial, entity.KioskActionSellerComplete, func(t *entity.KioskTransaction) error {
		if t.SellerID != identity.UserID {
			return errors.Forbidden("Only the seller can complete the deposit", nil)
		}
		return nil
	})
}

func (uc *KioskUseCase) BuyerPay(ctx context.Context, identity entity.Identity, productID string) (*entity.KioskTransaction, error) {
	latest, err := uc.kioskRepo.GetLatestByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return uc.transition(ctx, latest.SerialNumber, entity.KioskActionBuyerPay, func(t *entity.KioskTransaction) error {
		if t.SellerID == identity.UserID {
			return errors.Forbidden("Sellers cannot buy their own product", nil)
		}
		if t.Status == entity.KioskStatusPaid && t.BuyerID != identity.UserID {
			return errors.Conflict("Another buyer has already paid for this product")
		}
		t.BuyerID = identity.UserID
		return nil
	})
}

// Pickup hands the item to the buyer, frees the cabinet and closes the listing.
func (uc *KioskUseCase) Pickup(ctx context.Context, serial string) (*entity.KioskTransaction, error) {
	tx, err := uc.transition(ctx, serial, entity.KioskActionPickup, nil)
	if err != nil {
		return nil, err
	}

	if err := uc.cabinetRepo.Release(ctx, tx.CabinetNumber, serial); err != nil {
		logger.Error("Failed to release cabinet %d for %s: %v", tx.CabinetNumber, serial, err)
	}
	if err := uc.productRepo.UpdateStatus(ctx, tx.ProductID, entity.ProductStatusSoldOut); err != nil {
		logger.Error("Failed to mark product %s sold out: %v", tx.ProductID, err)
	}
	return tx, nil
}

// Status reports the product's latest kiosk transaction. The serial number is
// only shown to the seller and the buyer.
func (uc *KioskUseCase) Status(ctx context.Context, identity entity.Identity, productID string) (*KioskStatusView, error) {
	tx, err := uc.kioskRepo.GetLatestByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return &KioskStatusView{ProductID: productID, Status: entity.KioskStatusNone}, nil
		}
		return nil, err
	}

	if tx.IsExpired(uc.now()) {
		if tx, err = uc.expire(ctx, tx.SerialNumber); err != nil {
			return nil, err
		}
	}

	view := &KioskStatusView{
		ProductID:     tx.ProductID,
		Status:        tx.Status,
		CabinetNumber: tx.CabinetNumber,
		CreatedAt:     &tx.CreatedAt,
		ExpiresAt:     &tx.ExpiresAt,
	}
	if identity.UserID == tx.SellerID || (tx.BuyerID != "" && identity.UserID == tx.BuyerID) {
		view.SerialNumber = tx.SerialNumber
	}
	return view, nil
}

// load reads a transaction by serial, cancelling it when its window has passed.
func (uc *KioskUseCase) load(ctx context.Context, serial string) (*entity.KioskTransaction, error) {
	if !entity.ValidSerial(serial) {
		return nil, errors.BadRequest("Serial number must be 6 digits", nil)
	}

	tx, err := uc.kioskRepo.GetBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	if tx.IsExpired(uc.now()) {
		if _, err := uc.expire(ctx, serial); err != nil {
			return nil, err
		}
		return nil, errors.Expired("Serial number", serial)
	}
	return tx, nil
}

func (uc *KioskUseCase) expire(ctx context.Context, serial string) (*entity.KioskTransaction, error) {
	now := uc.now()
	changed := false
	tx, err := uc.kioskRepo.Update(ctx, serial, func(t *entity.KioskTransaction) error {
		if !t.IsExpired(now) {
			return nil
		}
		changed = true
		return t.Advance(entity.KioskActionExpire, now)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		logger.Info("Kiosk transaction %s expired", serial)
		uc.publish(tx, string(entity.KioskActionExpire))
	}
	return tx, nil
}

// transition runs mutate and then action under the store's row lock. An
// expired WAITING transaction is cancelled instead and Expired is returned.
func (uc *KioskUseCase) transition(ctx context.Context, serial string, action entity.KioskAction, mutate func(t *entity.KioskTransaction) error) (*entity.KioskTransaction, error) {
	if !entity.ValidSerial(serial) {
		return nil, errors.BadRequest("Serial number must be 6 digits", nil)
	}

	now := uc.now()
	expired := false
	tx, err := uc.kioskRepo.Update(ctx, serial, func(t *entity.KioskTransaction) error {
		if t.IsExpired(now) {
			expired = true
			return t.Advance(entity.KioskActionExpire, now)
		}
		if mutate != nil {
			if err := mutate(t); err != nil {
				return err
			}
		}
		return t.Advance(action, now)
	})
	if err != nil {
		logger.LogTransitionError(logger.KindKiosk, serial, string(action), err)
		return nil, err
	}

	if expired {
		uc.publish(tx, string(entity.KioskActionExpire))
		err := errors.Expired("Serial number", serial)
		logger.LogTransitionError(logger.KindKiosk, serial, string(action), err)
		return nil, err
	}

	uc.publish(tx, string(action))
	return tx, nil
}

// releaseUnheld gives back a cabinet acquired for a deposit that did not
// commit, unless a concurrent deposit of the same serial committed it and
// the item is still inside.
func (uc *KioskUseCase) releaseUnheld(ctx context.Context, cabinet int, serial string) {
	if tx, err := uc.kioskRepo.GetBySerial(ctx, serial); err == nil && tx.CabinetNumber == cabinet && occupiesCabinet(tx.Status) {
		return
	}
	if err := uc.cabinetRepo.Release(ctx, cabinet, serial); err != nil {
		logger.Error("Failed to release cabinet %d for %s: %v", cabinet, serial, err)
	}
}

func occupiesCabinet(status entity.KioskStatus) bool {
	return status == entity.KioskStatusDeposited || status == entity.KioskStatusPaid
}

func (uc *KioskUseCase) publish(tx *entity.KioskTransaction, action string) {
	if uc.events == nil {
		return
	}
	uc.events.Publish(entity.TradeEvent{
		Kind:          entity.TradeKindKiosk,
		Action:        action,
		ProductID:     tx.ProductID,
		Status:        string(tx.Status),
		SerialNumber:  tx.SerialNumber,
		CabinetNumber: tx.CabinetNumber,
		SellerID:      tx.SellerID,
		BuyerID:       tx.BuyerID,
		OccurredAt:    tx.UpdatedAt,
	})
}
