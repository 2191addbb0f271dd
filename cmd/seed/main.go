// Command main runs the database seeder for Iron Knowledge.
package main

import (
	"flag"
	"log"

	"github.com/Yahya-Naji/iron-knowledge/internal/config"
	"github.com/Yahya-Naji/iron-knowledge/internal/database"
	"github.com/Yahya-Naji/iron-knowledge/internal/seed"
)

func main() {
	numCustomers := flag.Int("customers", 20, "Number of extra generated customers to create")
	numHistorical := flag.Int("historical", 50, "Number of historical box requests to create")
	shouldClean := flag.Bool("clean", false, "Clean customers and box requests before seeding")
	fixtures := flag.String("fixtures", "", "Path to a YAML fixture file with additional customers")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d extra customers, %d historical requests, clean=%v\n",
		*numCustomers, *numHistorical, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(database.DB, seed.Options{
		NumExtraCustomers: *numCustomers,
		NumHistorical:     *numHistorical,
		ShouldClean:       *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	if *fixtures != "" {
		n, err := seed.LoadFixtures(database.DB, *fixtures)
		if err != nil {
			log.Fatalf("❌ Fixture loading failed: %v", err)
		}
		log.Printf("✓ %d fixture customers loaded", n)
	}

	log.Println("✨ All done! Demo accounts IM-10001 through IM-10005 are ready.")
}
