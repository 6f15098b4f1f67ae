package cli

import (
	"os"

	"github.com/spf13/cobra"
	"quizzone/internal/i18n"
	"quizzone/internal/infra/filebank"
	"quizzone/internal/infra/postgres"
)

// NewSeedCmd copies the JSON question banks into Postgres.
func NewSeedCmd(opts *options) *cobra.Command {
	var locales []string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load question banks into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			log := newLogger(cfg, os.Stderr)
			if cfg.Postgres.URL == "" {
				return errNoPostgres
			}
			ctx := cmd.Context()
			if err := runMigrations(ctx, cfg, log); err != nil {
				return err
			}

			db := postgres.OpenDB(cfg.Postgres.URL)
			defer db.Close()

			for _, locale := range locales {
				var loader *filebank.Loader
				if cfg.Quiz.DataDir != "" {
					loader = filebank.Dir(cfg.Quiz.DataDir, locale, log)
				} else {
					loader = filebank.Embedded(locale, log)
				}
				banks, err := loader.LoadAll(ctx, cfg.Quiz.Themes)
				if err != nil {
					return err
				}
				n, err := postgres.SeedBanks(ctx, db, loader.Locale(), banks)
				if err != nil {
					return err
				}
				log.Info("banks seeded", "locale", loader.Locale(), "themes", n)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&locales, "locales", []string{i18n.LocaleNorwegian, i18n.LocaleEnglish}, "locales to seed")
	return cmd
}
