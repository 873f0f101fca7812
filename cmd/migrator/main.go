package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var migrationPath, databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "postgres connection URL")
	flag.StringVar(&migrationPath, "migration-path", "./migrations", "path to migration files")
	flag.Parse()

	if databaseURL == "" {
		panic("database URL is required")
	}

	m, err := migrate.New("file://"+migrationPath, databaseURL)
	if err != nil {
		panic(err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("no migrations to apply")
			return
		}
		panic(err)
	}

	fmt.Println("migrations applied")
}
