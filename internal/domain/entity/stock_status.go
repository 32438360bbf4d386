package entity

// StockStatus clasificación del stock actual frente a la política del producto.
type StockStatus string

const (
	StockStatusOK        StockStatus = "OK"
	StockStatusLow       StockStatus = "LOW"
	StockStatusCritical  StockStatus = "CRITICAL"
	StockStatusOverstock StockStatus = "OVERSTOCK"
)

// NeedsReplenishment indica si el estado entra en la lista de bajo stock.
func (s StockStatus) NeedsReplenishment() bool {
	return s == StockStatusLow || s == StockStatusCritical
}
