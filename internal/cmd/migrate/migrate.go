package migrate

import (
	"context"

	"github.com/aisupport/faq-service/internal/config"
	registrymigrate "github.com/aisupport/faq-service/internal/registry/migrate"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	// Import plugins to trigger init() registration of their migrators.
	// Store plugins register their own migrators alongside their primary interface.
	_ "github.com/aisupport/faq-service/internal/plugin/store/mongo"
)

// Command returns the migrate sub-command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create database collections and indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db-url",
				Sources:  cli.EnvVars("FAQ_SERVICE_DB_URL", "MONGODB_URI"),
				Usage:    "Database connection URL",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "db-kind",
				Sources: cli.EnvVars("FAQ_SERVICE_DB_KIND"),
				Usage:   "Store backend (mongo)",
				Value:   "mongo",
			},
			&cli.StringFlag{
				Name:    "db-name",
				Sources: cli.EnvVars("FAQ_SERVICE_DB_NAME", "DB_NAME"),
				Usage:   "Database name",
				Value:   "ai_support",
			},
			&cli.StringFlag{
				Name:    "conversations-collection",
				Sources: cli.EnvVars("FAQ_SERVICE_CONVERSATIONS_COLLECTION", "CONV_COLLECTION"),
				Usage:   "Collection name for the conversation log",
				Value:   "conversations",
			},
			&cli.StringFlag{
				Name:    "faqs-collection",
				Sources: cli.EnvVars("FAQ_SERVICE_FAQS_COLLECTION", "FAQ_COLLECTION"),
				Usage:   "Collection name for uploaded FAQ documents",
				Value:   "faqs",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.DefaultConfig()
			cfg.DBURL = cmd.String("db-url")
			cfg.DatastoreType = cmd.String("db-kind")
			cfg.DBName = cmd.String("db-name")
			cfg.ConversationsCollection = cmd.String("conversations-collection")
			cfg.FAQsCollection = cmd.String("faqs-collection")
			ctx = config.WithContext(ctx, &cfg)

			log.Info("Running migrations...")
			if err := registrymigrate.RunAll(ctx); err != nil {
				return err
			}
			log.Info("All migrations completed successfully")
			return nil
		},
	}
}
