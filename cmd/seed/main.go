// seed genera el script SQL para poblar el catálogo de referencia (tiendas, productos,
// proveedores y usuarios) a partir de un archivo JSON.
//
// Uso: go run ./cmd/seed [ruta/catalog.json]
// Por defecto lee config/catalog.example.json.
// Escribe: migrations/002_seed_catalog.sql
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/catalog"
)

func main() {
	moduleRoot := findModuleRoot()
	path := filepath.Join(moduleRoot, "config", "catalog.example.json")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	c, err := catalog.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar catálogo: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(moduleRoot, "migrations", "002_seed_catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := c.WriteSQL(out); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d tiendas, %d productos, %d proveedores, %d usuarios\n",
		outPath, len(c.Stores), len(c.Products), len(c.Suppliers), len(c.Users))
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
