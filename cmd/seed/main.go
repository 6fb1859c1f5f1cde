package main

import (
	"fmt"
	"log"
	"os"

	"github.com/docecupcake/cupcake-backend/config"
	"github.com/docecupcake/cupcake-backend/internal/app/repository"
	"github.com/docecupcake/cupcake-backend/internal/app/service"
	"github.com/docecupcake/cupcake-backend/internal/db"
)

// Imports catalog rows from a spreadsheet:
//
//	go run cmd/seed/main.go <xlsx_file_path>
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	cupcakeService := service.NewCupcakeService(
		repository.NewCupcakeRepository(db.GetDB()),
		repository.NewFavoriteRepository(db.GetDB()),
	)

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	inputs, skipped, err := service.ReadCupcakeSheet(f)
	f.Close()
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	for _, e := range skipped {
		fmt.Printf("Skipped %v\n", e)
	}
	fmt.Printf("Total cupcakes to import: %d (skipped: %d)\n", len(inputs), len(skipped))
	if len(inputs) == 0 {
		return
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported := 0
	for _, input := range inputs {
		if _, err := cupcakeService.CreateCupcake(input); err != nil {
			fmt.Printf("Failed to import %q: %v\n", input.Name, err)
			continue
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total cupcakes imported: %d\n", imported)
}
