// Package migrations ships each host's schema as embedded goose SQL files.
// Hosts own disjoint databases, so every host applies only its own directory
// and the version histories never mix.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed projects/*.sql materials/*.sql logistics/*.sql
var files embed.FS

// Projects returns the projects host's migration files.
func Projects() fs.FS { return mustSub("projects") }

// Materials returns the materials host's migration files.
func Materials() fs.FS { return mustSub("materials") }

// Logistics returns the logistics host's migration files.
func Logistics() fs.FS { return mustSub("logistics") }

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		panic(fmt.Sprintf("migrations: missing embedded directory %q: %v", dir, err))
	}
	return sub
}
