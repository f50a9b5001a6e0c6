package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/openshelf/openshelf-backend/internal/catalog"
	"github.com/openshelf/openshelf-backend/internal/members"
	"github.com/openshelf/openshelf-backend/pkg/config"
	"github.com/openshelf/openshelf-backend/pkg/db"
	"github.com/openshelf/openshelf-backend/pkg/enums"
	"github.com/openshelf/openshelf-backend/pkg/logger"
	"github.com/openshelf/openshelf-backend/pkg/migrate"
	"github.com/openshelf/openshelf-backend/pkg/security"
	"github.com/openshelf/openshelf-backend/pkg/types"
)

// Seeds a local database with an admin, a couple of members, and a small
// starter catalog. Intended for dev environments only.
func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	if cfg.App.IsProd() {
		logg.Error(context.Background(), "refusing to seed a production database", nil)
		os.Exit(1)
	}

	ctx := context.Background()
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	memberService, err := members.NewService(members.NewRepository(dbClient.DB()), dbClient, logg, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to create member service", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	adminPassword, err := security.GenerateTempPassword(16)
	if err != nil {
		logg.Error(ctx, "failed to generate admin password", err)
		os.Exit(1)
	}

	seedMembers := []members.RegisterInput{
		{
			FirstName:   "Shelby",
			LastName:    "Admin",
			Email:       "admin@openshelf.local",
			PhoneNumber: "+15550100001",
			Password:    adminPassword,
			Address:     types.Address{Street: "1 Library Way", City: "Springfield", PostalCode: "11111", Country: "US"},
			IsAdmin:     true,
		},
		{
			FirstName:   "Nora",
			LastName:    "Blake",
			Email:       "nora.blake@openshelf.local",
			PhoneNumber: "+15550100002",
			Password:    "reading-is-fun-1",
		},
		{
			FirstName:   "Pavel",
			LastName:    "Sokolov",
			Email:       "pavel.sokolov@openshelf.local",
			PhoneNumber: "+15550100003",
			Password:    "reading-is-fun-2",
		},
	}
	for _, input := range seedMembers {
		if _, err := memberService.Register(ctx, input); err != nil {
			logg.Warn(logg.WithField(ctx, "email", input.Email), "skipping member: "+err.Error())
		}
	}

	seedBooks := []catalog.CreateBookInput{
		{
			Title:           "The Left Hand of Darkness",
			Authors:         []string{"Ursula K. Le Guin"},
			Genre:           enums.BookGenreScienceFiction,
			PublicationDate: time.Date(1969, 3, 1, 0, 0, 0, 0, time.UTC),
			Publisher:       "Ace Books",
			ISBN:            "978-0441478125",
			Pages:           304,
			InitialStock:    4,
		},
		{
			Title:           "The Name of the Rose",
			Authors:         []string{"Umberto Eco"},
			Genre:           enums.BookGenreMystery,
			PublicationDate: time.Date(1980, 9, 1, 0, 0, 0, 0, time.UTC),
			Publisher:       "Bompiani",
			ISBN:            "978-0156001311",
			Pages:           536,
			InitialStock:    2,
		},
		{
			Title:           "Selected Poems",
			Authors:         []string{"Wislawa Szymborska"},
			Genre:           enums.BookGenrePoetry,
			PublicationDate: time.Date(1998, 5, 1, 0, 0, 0, 0, time.UTC),
			Publisher:       "Harcourt",
			ISBN:            "978-0156011464",
			Pages:           192,
			InitialStock:    3,
		},
	}
	for _, input := range seedBooks {
		if _, err := catalogService.CreateBook(ctx, input); err != nil {
			logg.Warn(logg.WithField(ctx, "title", input.Title), "skipping book: "+err.Error())
		}
	}

	fmt.Println("seeded dev data; admin login: admin@openshelf.local /", adminPassword)
}
