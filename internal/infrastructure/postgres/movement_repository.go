package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `
	id, seq, type, quantity, store_id, product_id, supplier_id, batch, expiration, price, note,
	balance_after, verified, verified_at, verified_by, verification_note,
	cancelled, cancelled_at, cancelled_by, cancellation_reason, user_id, created_at, updated_at`

// signedQty expresión SQL de la cantidad con signo.
const signedQty = `CASE WHEN type = 'ENTRADA' THEN quantity ELSE -quantity END`

// MovementRepo ledger de stock sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste el movimiento; la BD asigna seq.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO stock_movements (
			id, type, quantity, store_id, product_id, supplier_id, batch, expiration, price, note,
			balance_after, verified, cancelled, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, FALSE, FALSE, $12, $13, $14)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.Type, m.Quantity, m.StoreID, m.ProductID, m.SupplierID, m.Batch, m.Expiration, m.Price, m.Note,
		m.BalanceAfter, m.UserID, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.Seq)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRequest
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; nil, nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// Update reescribe los campos mutables. balance_after, seq y created_at no se tocan.
func (r *MovementRepo) Update(ctx context.Context, m *entity.Movement) error {
	query := `
		UPDATE stock_movements SET
			type = $2, quantity = $3, store_id = $4, product_id = $5, supplier_id = $6, batch = $7,
			expiration = $8, price = $9, note = $10,
			verified = $11, verified_at = $12, verified_by = $13, verification_note = $14,
			cancelled = $15, cancelled_at = $16, cancelled_by = $17, cancellation_reason = $18,
			updated_at = $19
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.Type, m.Quantity, m.StoreID, m.ProductID, m.SupplierID, m.Batch,
		m.Expiration, m.Price, m.Note,
		m.Verified, m.VerifiedAt, m.VerifiedBy, m.VerificationNote,
		m.Cancelled, m.CancelledAt, m.CancelledBy, m.CancellationReason,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMovementNotFound
	}
	return nil
}

// UpdateBalances reescribe balance_after en un solo batch.
func (r *MovementRepo) UpdateBalances(ctx context.Context, ms []*entity.Movement) error {
	if len(ms) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range ms {
		batch.Queue(`UPDATE stock_movements SET balance_after = $2 WHERE id = $1`, m.ID, m.BalanceAfter)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range ms {
		tag, err := br.Exec()
		if err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrMovementNotFound
		}
	}
	return nil
}

// Delete borra el movimiento.
func (r *MovementRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMovementNotFound
	}
	return nil
}

// ListChain cadena completa (incluye cancelados) en orden cronológico.
func (r *MovementRepo) ListChain(ctx context.Context, productID, storeID string) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE product_id = $1 AND store_id = $2
		ORDER BY created_at, seq`
	return r.queryMovements(ctx, "list chain", query, productID, storeID)
}

// LatestInChain último movimiento de la cadena; nil, nil si vacía.
func (r *MovementRepo) LatestInChain(ctx context.Context, productID, storeID string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE product_id = $1 AND store_id = $2
		ORDER BY created_at DESC, seq DESC
		LIMIT 1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, productID, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest in chain: %w", err)
	}
	return m, nil
}

// SumSigned stock derivado del par. COALESCE devuelve 0 si no hay movimientos.
func (r *MovementRepo) SumSigned(ctx context.Context, productID, storeID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(` + signedQty + `), 0)
		FROM stock_movements
		WHERE product_id = $1 AND store_id = $2 AND NOT cancelled`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, productID, storeID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum signed: %w", err)
	}
	return total, nil
}

// List filtra, ordena y pagina. El total ignora Limit/Offset.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, int, error) {
	if !validFilterIDs(f) {
		return nil, 0, nil
	}
	where, args := movementWhere(f)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	order := " ORDER BY created_at DESC, seq DESC"
	if f.Ascending {
		order = " ORDER BY created_at, seq"
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements` + where + order
	pos := len(args) + 1
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, f.Limit)
		pos++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", pos)
		args = append(args, f.Offset)
	}
	list, err := r.queryMovements(ctx, "list movements", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Aggregate agrupa por (dimensión, tipo). Value suma quantity*price solo de los que tienen precio.
func (r *MovementRepo) Aggregate(ctx context.Context, f repository.MovementFilter, dim repository.AggregateDimension) ([]repository.AggregateRow, error) {
	keyExpr, err := dimensionExpr(dim)
	if err != nil {
		return nil, err
	}
	if !validFilterIDs(f) {
		return nil, nil
	}
	where, args := movementWhere(f)
	query := `
		SELECT ` + keyExpr + ` AS key,
		       type,
		       COUNT(*),
		       COALESCE(SUM(quantity), 0),
		       COALESCE(SUM(quantity * price) FILTER (WHERE price IS NOT NULL), 0)
		FROM stock_movements` + where + `
		GROUP BY 1, 2
		ORDER BY 1, 2`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate by %s: %w", dim, err)
	}
	defer rows.Close()
	var out []repository.AggregateRow
	for rows.Next() {
		var row repository.AggregateRow
		if err := rows.Scan(&row.Key, &row.Type, &row.Count, &row.Quantity, &row.Value); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CurrentStockByStore stock derivado de cada producto con movimientos en la tienda.
func (r *MovementRepo) CurrentStockByStore(ctx context.Context, storeID string) (map[string]decimal.Decimal, error) {
	if !validID(storeID) {
		return map[string]decimal.Decimal{}, nil
	}
	query := `
		SELECT product_id, COALESCE(SUM(` + signedQty + `), 0)
		FROM stock_movements
		WHERE store_id = $1 AND NOT cancelled
		GROUP BY product_id`
	rows, err := r.q.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("stock by store: %w", err)
	}
	defer rows.Close()
	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var productID string
		var qty decimal.Decimal
		if err := rows.Scan(&productID, &qty); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out[productID] = qty
	}
	return out, rows.Err()
}

// ListChainKeys pares (producto, tienda) con al menos un movimiento.
func (r *MovementRepo) ListChainKeys(ctx context.Context) ([]entity.ChainKey, error) {
	rows, err := r.q.Query(ctx, `
		SELECT DISTINCT product_id, store_id
		FROM stock_movements
		ORDER BY store_id, product_id`)
	if err != nil {
		return nil, fmt.Errorf("list chain keys: %w", err)
	}
	defer rows.Close()
	var out []entity.ChainKey
	for rows.Next() {
		var k entity.ChainKey
		if err := rows.Scan(&k.ProductID, &k.StoreID); err != nil {
			return nil, fmt.Errorf("scan chain key: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *MovementRepo) queryMovements(ctx context.Context, op, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.Seq, &m.Type, &m.Quantity, &m.StoreID, &m.ProductID, &m.SupplierID, &m.Batch,
		&m.Expiration, &m.Price, &m.Note,
		&m.BalanceAfter, &m.Verified, &m.VerifiedAt, &m.VerifiedBy, &m.VerificationNote,
		&m.Cancelled, &m.CancelledAt, &m.CancelledBy, &m.CancellationReason, &m.UserID,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// movementWhere construye el WHERE y sus argumentos posicionales.
func movementWhere(f repository.MovementFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if !f.IncludeCancelled {
		conds = append(conds, "NOT cancelled")
	}
	if f.StoreID != "" {
		add("store_id = $%d", f.StoreID)
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.SupplierID != "" {
		add("supplier_id = $%d", f.SupplierID)
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	if f.Verified != nil {
		add("verified = $%d", *f.Verified)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func dimensionExpr(dim repository.AggregateDimension) (string, error) {
	switch dim {
	case repository.DimensionType:
		return "type::text", nil
	case repository.DimensionMonth:
		return "to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM')", nil
	case repository.DimensionStore:
		return "store_id::text", nil
	case repository.DimensionProduct:
		return "product_id::text", nil
	case repository.DimensionSupplier:
		return "COALESCE(supplier_id::text, '')", nil
	default:
		return "", fmt.Errorf("dimensión de agregación desconocida: %q", dim)
	}
}
