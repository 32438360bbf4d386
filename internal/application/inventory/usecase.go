package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	ledger "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// Config política del motor de movimientos.
type Config struct {
	Policy ledger.StockPolicy
}

// MovementUseCase orquesta create/update/delete/verify/cancel sobre el ledger.
// Cada operación que lee y escribe saldo corre en una sola transacción con la fila del
// producto bloqueada (SELECT FOR UPDATE), lo que serializa las escrituras por (producto, tienda).
type MovementUseCase struct {
	txRunner  TxRunner
	validator *MovementValidator
	projector *StockProjector
	resolver  relationResolver
	idem      IdempotencyStore
	policy    ledger.StockPolicy
	log       *logger.Logger
	now       func() time.Time
}

// NewMovementUseCase construye el caso de uso. idem puede ser nil (idempotencia deshabilitada).
func NewMovementUseCase(
	txRunner TxRunner,
	reads ReadRepos,
	projector *StockProjector,
	idem IdempotencyStore,
	cfg Config,
	log *logger.Logger,
) *MovementUseCase {
	return &MovementUseCase{
		txRunner:  txRunner,
		validator: NewMovementValidator(cfg.Policy),
		projector: projector,
		resolver:  relationResolver{reads: reads},
		idem:      idem,
		policy:    cfg.Policy,
		log:       log.Component("movement_usecase"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// MovementInput entrada para registrar un movimiento.
type MovementInput struct {
	Type       entity.MovementType
	Quantity   decimal.Decimal
	StoreID    string
	ProductID  string
	SupplierID *string
	Batch      *string
	Expiration *time.Time
	Price      *decimal.Decimal
	Note       *string
	UserID     string // vacío = sin usuario
	// IdempotencyKey opcional: una segunda alta con la misma clave se rechaza.
	IdempotencyKey string
}

// MovementPatch cambios parciales; nil = sin cambio. Para SupplierID, Batch y Note el string
// vacío limpia el campo.
type MovementPatch struct {
	Type       *entity.MovementType
	Quantity   *decimal.Decimal
	StoreID    *string
	ProductID  *string
	SupplierID *string
	Batch      *string
	Expiration *time.Time
	Price      *decimal.Decimal
	Note       *string
}

// structural indica si el patch cambia algún campo que afecta el saldo.
func (p MovementPatch) structural(m *entity.Movement) bool {
	return (p.Type != nil && *p.Type != m.Type) ||
		(p.Quantity != nil && !p.Quantity.Equal(m.Quantity)) ||
		(p.StoreID != nil && *p.StoreID != m.StoreID) ||
		(p.ProductID != nil && *p.ProductID != m.ProductID)
}

// Create valida, calcula BalanceAfter = stock actual + delta y persiste todo en una transacción.
func (uc *MovementUseCase) Create(ctx context.Context, input MovementInput) (*MovementDetail, error) {
	if err := uc.validator.ValidateShape(input.Type, input.Quantity, input.StoreID, input.ProductID); err != nil {
		return nil, err
	}

	reserved := false
	if input.IdempotencyKey != "" && uc.idem != nil {
		if err := uc.idem.Reserve(ctx, input.IdempotencyKey); err != nil {
			return nil, err
		}
		reserved = true
	}

	var created *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		supplierRepo repository.SupplierRepository,
	) error {
		m, err := uc.createInTx(ctx, movRepo, productRepo, supplierRepo, input)
		if err != nil {
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		if reserved {
			if relErr := uc.idem.Release(ctx, input.IdempotencyKey); relErr != nil {
				uc.log.Error().Err(relErr).Str("key", input.IdempotencyKey).Msg("liberar clave de idempotencia")
			}
		}
		return nil, err
	}

	uc.log.Info().
		Str("movement_id", created.ID).
		Str("type", string(created.Type)).
		Str("product_id", created.ProductID).
		Str("store_id", created.StoreID).
		Str("quantity", created.Quantity.String()).
		Str("balance_after", created.BalanceAfter.String()).
		Msg("movimiento registrado")

	return uc.resolver.resolve(ctx, created)
}

func (uc *MovementUseCase) createInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	input MovementInput,
) (*entity.Movement, error) {
	// Bloquea la fila del producto: dos altas concurrentes del mismo par se serializan aquí.
	product, err := productRepo.GetForUpdate(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if err := uc.validator.ValidateReferences(ctx, product, input.StoreID, supplierRepo, input.SupplierID); err != nil {
		return nil, err
	}
	current, err := movRepo.SumSigned(ctx, input.ProductID, input.StoreID)
	if err != nil {
		return nil, err
	}
	if err := uc.validator.ValidateStock(current, input.Type, input.Quantity); err != nil {
		return nil, err
	}

	now := uc.now()
	latest, err := movRepo.LatestInChain(ctx, input.ProductID, input.StoreID)
	if err != nil {
		return nil, err
	}
	if latest != nil && now.Before(latest.CreatedAt) {
		// El alta siempre queda al final de la cadena aunque el reloj retroceda.
		now = latest.CreatedAt
	}

	m := &entity.Movement{
		ID:           uuid.New().String(),
		Type:         input.Type,
		Quantity:     input.Quantity,
		StoreID:      input.StoreID,
		ProductID:    input.ProductID,
		SupplierID:   nonEmpty(input.SupplierID),
		Batch:        nonEmpty(input.Batch),
		Expiration:   input.Expiration,
		Price:        input.Price,
		Note:         nonEmpty(input.Note),
		BalanceAfter: current.Add(ledger.SignedDelta(input.Type, input.Quantity)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.UserID != "" {
		userID := input.UserID
		m.UserID = &userID
	}
	if err := movRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Update aplica cambios. Los campos descriptivos se modifican libremente; si cambia tipo,
// cantidad, tienda o producto se revalida como un alta y se recalculan las cadenas afectadas.
func (uc *MovementUseCase) Update(ctx context.Context, id string, patch MovementPatch) (*MovementDetail, error) {
	var updated *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		supplierRepo repository.SupplierRepository,
	) error {
		var extra []string
		if patch.ProductID != nil && *patch.ProductID != "" {
			extra = append(extra, *patch.ProductID)
		}
		m, products, err := lockMovement(ctx, movRepo, productRepo, id, extra...)
		if err != nil {
			return err
		}

		if patch.SupplierID != nil {
			if err := uc.validator.ValidateSupplier(ctx, supplierRepo, patch.SupplierID); err != nil {
				return err
			}
		}

		if !patch.structural(m) {
			applyDescriptive(m, patch)
			m.UpdatedAt = uc.now()
			if err := movRepo.Update(ctx, m); err != nil {
				return err
			}
			updated = m
			return nil
		}

		if m.Cancelled {
			return domain.ErrAlreadyCancelled
		}
		oldKey := m.ChainKey()

		if patch.Type != nil {
			m.Type = *patch.Type
		}
		if patch.Quantity != nil {
			m.Quantity = *patch.Quantity
		}
		if patch.StoreID != nil {
			m.StoreID = *patch.StoreID
		}
		if patch.ProductID != nil {
			m.ProductID = *patch.ProductID
		}
		if err := uc.validator.ValidateShape(m.Type, m.Quantity, m.StoreID, m.ProductID); err != nil {
			return err
		}
		if err := uc.validator.ValidateReferences(ctx, products[m.ProductID], m.StoreID, supplierRepo, nil); err != nil {
			return err
		}
		applyDescriptive(m, patch)
		m.UpdatedAt = uc.now()
		if err := movRepo.Update(ctx, m); err != nil {
			return err
		}

		keys := []entity.ChainKey{m.ChainKey()}
		if oldKey != m.ChainKey() {
			keys = append(keys, oldKey)
		}
		for _, key := range keys {
			res, err := rebalanceChain(ctx, movRepo, key, uc.policy)
			if err != nil {
				return err
			}
			if res.FirstViolator != nil {
				return domain.ErrInsufficientStock
			}
			if key == m.ChainKey() {
				m.BalanceAfter = balanceOf(res, m)
			}
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("movement_id", id).Msg("movimiento actualizado")
	return uc.resolver.resolve(ctx, updated)
}

// Delete elimina el movimiento y recalcula en cascada los posteriores de su cadena.
// Rechaza si algún saldo posterior quedaría negativo.
func (uc *MovementUseCase) Delete(ctx context.Context, id string) error {
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		_ repository.SupplierRepository,
	) error {
		m, _, err := lockMovement(ctx, movRepo, productRepo, id)
		if err != nil {
			return err
		}
		if err := movRepo.Delete(ctx, id); err != nil {
			return err
		}
		if m.Cancelled {
			// Un cancelado ya no aporta al saldo: no hay nada que reproducir.
			return nil
		}
		res, err := rebalanceChain(ctx, movRepo, m.ChainKey(), uc.policy)
		if err != nil {
			return err
		}
		if res.FirstViolator != nil {
			return domain.ErrCannotDeleteInsufficientStock
		}
		return nil
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("movement_id", id).Msg("movimiento eliminado")
	return nil
}

// Verify marca o desmarca la verificación. No afecta stock. Verificar algo ya verificado
// no cambia nada (se conserva el sello original).
func (uc *MovementUseCase) Verify(ctx context.Context, id string, verified bool, note *string, actor string) (*MovementDetail, error) {
	if actor == "" {
		return nil, domain.ErrMissingActor
	}
	var out *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		_ repository.SupplierRepository,
	) error {
		m, _, err := lockMovement(ctx, movRepo, productRepo, id)
		if err != nil {
			return err
		}
		out = m
		if m.Verified == verified {
			return nil
		}
		now := uc.now()
		m.Verified = verified
		m.VerificationNote = nonEmpty(note)
		if verified {
			by := actor
			m.VerifiedAt = &now
			m.VerifiedBy = &by
		} else {
			m.VerifiedAt = nil
			m.VerifiedBy = nil
		}
		m.UpdatedAt = now
		return movRepo.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return uc.resolver.resolve(ctx, out)
}

// Cancel transición terminal activo→cancelado: el movimiento deja de contar y la cadena se
// recalcula sin él.
func (uc *MovementUseCase) Cancel(ctx context.Context, id, reason, actor string) (*MovementDetail, error) {
	if actor == "" {
		return nil, domain.ErrMissingActor
	}
	if strings.TrimSpace(reason) == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		_ repository.SupplierRepository,
	) error {
		m, _, err := lockMovement(ctx, movRepo, productRepo, id)
		if err != nil {
			return err
		}
		if m.Cancelled {
			return domain.ErrAlreadyCancelled
		}
		now := uc.now()
		by := actor
		m.Cancelled = true
		m.CancelledAt = &now
		m.CancelledBy = &by
		m.CancellationReason = &reason
		m.UpdatedAt = now
		if err := movRepo.Update(ctx, m); err != nil {
			return err
		}
		res, err := rebalanceChain(ctx, movRepo, m.ChainKey(), uc.policy)
		if err != nil {
			return err
		}
		if res.FirstViolator != nil {
			return domain.ErrCannotCancelInsufficientStock
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("movement_id", id).
		Str("cancelled_by", actor).
		Msg("movimiento cancelado")
	return uc.resolver.resolve(ctx, out)
}

// RecalculateStock delega en el proyector.
func (uc *MovementUseCase) RecalculateStock(ctx context.Context, productID, storeID string) (decimal.Decimal, error) {
	return uc.projector.Recalculate(ctx, productID, storeID)
}

// lockMovement lee el movimiento, bloquea las filas de producto implicadas en orden de id
// (evita deadlocks entre dos cadenas) y vuelve a leerlo ya con el lock tomado.
func lockMovement(
	ctx context.Context,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	id string,
	extraProductIDs ...string,
) (*entity.Movement, map[string]*entity.Product, error) {
	m, err := movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, domain.ErrMovementNotFound
	}

	ids := append([]string{m.ProductID}, extraProductIDs...)
	sort.Strings(ids)
	products := make(map[string]*entity.Product, len(ids))
	for _, pid := range ids {
		if _, done := products[pid]; done {
			continue
		}
		p, err := productRepo.GetForUpdate(ctx, pid)
		if err != nil {
			return nil, nil, fmt.Errorf("lock product %s: %w", pid, err)
		}
		products[pid] = p
	}

	fresh, err := movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if fresh == nil {
		return nil, nil, domain.ErrMovementNotFound
	}
	if fresh.ProductID != m.ProductID {
		// Otro proceso movió el registro a otra cadena entre la lectura y el lock.
		return nil, nil, domain.ErrConcurrencyConflict
	}
	return fresh, products, nil
}

func applyDescriptive(m *entity.Movement, p MovementPatch) {
	if p.SupplierID != nil {
		m.SupplierID = nonEmpty(p.SupplierID)
	}
	if p.Batch != nil {
		m.Batch = nonEmpty(p.Batch)
	}
	if p.Expiration != nil {
		m.Expiration = p.Expiration
	}
	if p.Price != nil {
		m.Price = p.Price
	}
	if p.Note != nil {
		m.Note = nonEmpty(p.Note)
	}
}

func balanceOf(res ledger.RebalanceResult, m *entity.Movement) decimal.Decimal {
	for _, c := range res.Changed {
		if c.ID == m.ID {
			return c.BalanceAfter
		}
	}
	return m.BalanceAfter
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
