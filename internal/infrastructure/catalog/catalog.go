// Package catalog carga el catálogo de referencia (tiendas, productos, proveedores y usuarios)
// desde un archivo JSON. El ledger solo lee estas entidades; el catálogo sirve para poblar el
// backend en memoria y para generar el script SQL de seed de PostgreSQL.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// Store tienda del catálogo.
type Store struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Active  *bool  `json:"active,omitempty"` // ausente = activa
}

// Product producto de una tienda.
type Product struct {
	ID              string          `json:"id"`
	StoreID         string          `json:"store_id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	StockMin        decimal.Decimal `json:"stock_min"`
	StockMax        decimal.Decimal `json:"stock_max"`
	AlertPercentage decimal.Decimal `json:"alert_percentage"`
	Active          *bool           `json:"active,omitempty"`
}

// Supplier proveedor.
type Supplier struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	TaxID  string `json:"tax_id,omitempty"`
	Active *bool  `json:"active,omitempty"`
}

// User usuario que registra o verifica movimientos.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// File contenido completo del archivo de catálogo.
type File struct {
	Stores    []Store    `json:"stores"`
	Products  []Product  `json:"products"`
	Suppliers []Supplier `json:"suppliers"`
	Users     []User     `json:"users"`
}

// Seeder destino del catálogo (lo implementa el store en memoria).
type Seeder interface {
	PutStore(*entity.Store)
	PutProduct(*entity.Product)
	PutSupplier(*entity.Supplier)
	PutUser(*entity.User)
}

// Load lee y valida el catálogo desde path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir catálogo: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode lee y valida el catálogo desde r.
func Decode(r io.Reader) (*File, error) {
	var c File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decodificar catálogo: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *File) validate() error {
	stores := make(map[string]bool, len(c.Stores))
	for _, s := range c.Stores {
		if s.ID == "" || s.Name == "" {
			return fmt.Errorf("catálogo: tienda sin id o nombre")
		}
		stores[s.ID] = true
	}
	skus := make(map[string]bool, len(c.Products))
	for _, p := range c.Products {
		if p.ID == "" || p.SKU == "" {
			return fmt.Errorf("catálogo: producto sin id o sku")
		}
		if !stores[p.StoreID] {
			return fmt.Errorf("catálogo: producto %s referencia tienda desconocida %q", p.ID, p.StoreID)
		}
		key := p.StoreID + "/" + p.SKU
		if skus[key] {
			return fmt.Errorf("catálogo: sku %s repetido en la tienda %s", p.SKU, p.StoreID)
		}
		skus[key] = true
		if p.StockMin.IsNegative() || p.StockMax.IsNegative() {
			return fmt.Errorf("catálogo: producto %s con mínimos o máximos negativos", p.ID)
		}
	}
	for _, u := range c.Users {
		switch u.Role {
		case entity.RoleAdmin, entity.RoleGerente, entity.RoleOperador:
		default:
			return fmt.Errorf("catálogo: usuario %s con rol inválido %q", u.ID, u.Role)
		}
	}
	return nil
}

// Apply vuelca el catálogo en el seeder.
func (c *File) Apply(s Seeder, now time.Time) {
	for _, v := range c.Stores {
		s.PutStore(&entity.Store{ID: v.ID, Name: v.Name, Address: v.Address, Active: active(v.Active), CreatedAt: now, UpdatedAt: now})
	}
	for _, v := range c.Products {
		s.PutProduct(&entity.Product{
			ID: v.ID, StoreID: v.StoreID, SKU: v.SKU, Name: v.Name,
			StockMin: v.StockMin, StockMax: v.StockMax, AlertPercentage: v.AlertPercentage,
			Active: active(v.Active), CreatedAt: now, UpdatedAt: now,
		})
	}
	for _, v := range c.Suppliers {
		s.PutSupplier(&entity.Supplier{ID: v.ID, Name: v.Name, TaxID: v.TaxID, Active: active(v.Active), CreatedAt: now, UpdatedAt: now})
	}
	for _, v := range c.Users {
		s.PutUser(&entity.User{ID: v.ID, Email: v.Email, Name: v.Name, Role: v.Role, CreatedAt: now})
	}
}

func active(b *bool) bool {
	return b == nil || *b
}
