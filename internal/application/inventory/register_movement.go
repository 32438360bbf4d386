package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// CreateFromRequest adapta el request HTTP al caso de uso Create(ctx, MovementInput).
func (uc *MovementUseCase) CreateFromRequest(ctx context.Context, userID, idempotencyKey string, in dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	input := InputFromRequest(in)
	input.UserID = userID
	input.IdempotencyKey = idempotencyKey
	d, err := uc.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	out := ToMovementResponse(d)
	return &out, nil
}

// CreateBulkFromRequest adapta el lote HTTP a CreateBulk.
func (uc *MovementUseCase) CreateBulkFromRequest(ctx context.Context, userID, idempotencyKey string, in dto.BulkMovementRequest) dto.BulkMovementResponse {
	items := make([]MovementInput, len(in.Movements))
	for i, m := range in.Movements {
		items[i] = InputFromRequest(m)
		items[i].IdempotencyKey = idempotencyKey
	}
	res := uc.CreateBulk(ctx, items, userID)

	out := dto.BulkMovementResponse{
		SuccessCount: res.SuccessCount,
		FailureCount: res.FailureCount,
		Results:      make([]dto.BulkItemResponse, len(res.Results)),
	}
	for i, r := range res.Results {
		item := dto.BulkItemResponse{Index: r.Index, Success: r.Success}
		if r.Movement != nil {
			m := ToMovementResponse(r.Movement)
			item.Movement = &m
		}
		if r.Error != nil {
			item.Error = &dto.ErrorResponse{Code: r.Error.Code, Message: r.Error.Message}
		}
		out.Results[i] = item
	}
	return out
}

// UpdateFromRequest adapta el PATCH HTTP a Update.
func (uc *MovementUseCase) UpdateFromRequest(ctx context.Context, id string, in dto.UpdateMovementRequest) (*dto.MovementResponse, error) {
	patch := MovementPatch{
		Quantity:   in.Quantity,
		StoreID:    in.StoreID,
		ProductID:  in.ProductID,
		SupplierID: in.SupplierID,
		Batch:      in.Batch,
		Expiration: in.Expiration,
		Price:      in.Price,
		Note:       in.Note,
	}
	if in.Type != nil {
		t := entity.MovementType(*in.Type)
		patch.Type = &t
	}
	if patch.Quantity != nil && !patch.Quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	d, err := uc.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	out := ToMovementResponse(d)
	return &out, nil
}

// InputFromRequest convierte el body de alta en MovementInput (sin usuario ni clave).
func InputFromRequest(in dto.CreateMovementRequest) MovementInput {
	return MovementInput{
		Type:       entity.MovementType(in.Type),
		Quantity:   in.Quantity,
		StoreID:    in.StoreID,
		ProductID:  in.ProductID,
		SupplierID: in.SupplierID,
		Batch:      in.Batch,
		Expiration: in.Expiration,
		Price:      in.Price,
		Note:       in.Note,
	}
}

// ToMovementResponse mapea el detalle a la salida HTTP.
func ToMovementResponse(d *MovementDetail) dto.MovementResponse {
	m := d.Movement
	out := dto.MovementResponse{
		ID:                 m.ID,
		Type:               string(m.Type),
		Quantity:           m.Quantity,
		StoreID:            m.StoreID,
		ProductID:          m.ProductID,
		SupplierID:         m.SupplierID,
		Batch:              m.Batch,
		Expiration:         m.Expiration,
		Price:              m.Price,
		Note:               m.Note,
		BalanceAfter:       m.BalanceAfter,
		Verified:           m.Verified,
		VerifiedAt:         m.VerifiedAt,
		VerifiedBy:         m.VerifiedBy,
		VerificationNote:   m.VerificationNote,
		Cancelled:          m.Cancelled,
		CancelledAt:        m.CancelledAt,
		CancelledBy:        m.CancelledBy,
		CancellationReason: m.CancellationReason,
		UserID:             m.UserID,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if d.Product != nil {
		out.Product = &dto.RefResponse{ID: d.Product.ID, Name: d.Product.Name, SKU: d.Product.SKU}
	}
	if d.Store != nil {
		out.Store = &dto.RefResponse{ID: d.Store.ID, Name: d.Store.Name}
	}
	if d.Supplier != nil {
		out.Supplier = &dto.RefResponse{ID: d.Supplier.ID, Name: d.Supplier.Name}
	}
	if d.User != nil {
		out.User = &dto.RefResponse{ID: d.User.ID, Name: d.User.Name}
	}
	return out
}

// ToMovementListResponse mapea una página.
func ToMovementListResponse(p *MovementPage) dto.MovementListResponse {
	items := make([]dto.MovementResponse, len(p.Items))
	for i, d := range p.Items {
		items[i] = ToMovementResponse(d)
	}
	return dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: p.Limit, Offset: p.Offset, Total: p.Total},
	}
}
