package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"kushklicker/internal/db"
	"kushklicker/internal/migrations"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations")
	flag.Parse()

	names, err := migrations.Names()
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	if !*apply {
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}
	fmt.Printf("applied %d migrations\n", len(names))
}
