package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Odin94/Progeny-vtm-v5-character-creator-sub001/config"
	"github.com/Odin94/Progeny-vtm-v5-character-creator-sub001/internal/auth"
	"github.com/Odin94/Progeny-vtm-v5-character-creator-sub001/internal/db"
	"github.com/Odin94/Progeny-vtm-v5-character-creator-sub001/internal/models"
	"github.com/Odin94/Progeny-vtm-v5-character-creator-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"gorm.io/datatypes"
)

func main() {
	app := &cli.App{
		Name:  "syncctl",
		Usage: "Progeny sync server CLI for local dev tasks",
		Commands: []*cli.Command{
			{
				Name:  "token",
				Usage: "Mint a sync bearer token for a user id",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Required: true, Usage: "user UUID"},
				},
				Action: func(c *cli.Context) error {
					cfg := config.LoadConfig()
					uid, err := uuid.Parse(c.String("user"))
					if err != nil {
						return fmt.Errorf("invalid user id: %w", err)
					}
					token, err := auth.GenerateSyncToken(uid, cfg.JWTSecret, cfg.TokenTTL)
					if err != nil {
						return err
					}
					fmt.Println(token)
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Create a character owned by the given user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "owner", Required: true, Usage: "owner UUID"},
					&cli.StringFlag{Name: "name", Value: "Test Character"},
				},
				Action: func(c *cli.Context) error {
					cfg := config.LoadConfig()
					db.InitDB(cfg)
					owner, err := uuid.Parse(c.String("owner"))
					if err != nil {
						return fmt.Errorf("invalid owner id: %w", err)
					}
					repo := repository.NewCharacterRepository(db.DB)
					character := &models.Character{
						OwnerID: owner,
						Name:    c.String("name"),
						Data:    datatypes.JSON([]byte(`{}`)),
						Version: 1,
					}
					if err := repo.Create(context.Background(), character); err != nil {
						return err
					}
					fmt.Println(character.ID)
					return nil
				},
			},
			{
				Name:  "share",
				Usage: "Grant a user read access to a character",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "character", Required: true, Usage: "character UUID"},
					&cli.StringFlag{Name: "user", Required: true, Usage: "grantee UUID"},
				},
				Action: func(c *cli.Context) error {
					cfg := config.LoadConfig()
					db.InitDB(cfg)
					characterID, err := uuid.Parse(c.String("character"))
					if err != nil {
						return fmt.Errorf("invalid character id: %w", err)
					}
					userID, err := uuid.Parse(c.String("user"))
					if err != nil {
						return fmt.Errorf("invalid user id: %w", err)
					}
					repo := repository.NewCharacterRepository(db.DB)
					return repo.Share(context.Background(), characterID, userID)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
