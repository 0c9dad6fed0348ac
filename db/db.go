package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"shelfwatch-product-harvester/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func NewSQLXPostgresDB(lc fx.Lifecycle, cfg *config.Config, log *zap.SugaredLogger) (*sqlx.DB, error) {
	if strings.TrimSpace(cfg.Postgres.Host) == "" || strings.TrimSpace(cfg.Postgres.Name) == "" {
		log.Infow("postgres disabled (missing DB_HOST/DB_NAME)")
		return nil, nil
	}

	db, err := sqlx.Open("pgx", postgresDSN(cfg))
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.PingContext(ctx); err != nil {
				_ = db.Close()
				return fmt.Errorf("postgres ping failed: %w", err)
			}
			log.Infow("postgres connected", "host", cfg.Postgres.Host, "db", cfg.Postgres.Name)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := db.Close(); err != nil {
				log.Warnw("postgres close failed", "err", err)
			}
			return nil
		},
	})

	return db, nil
}

func postgresDSN(cfg *config.Config) string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cfg.Postgres.Host, cfg.Postgres.Port),
		Path:   cfg.Postgres.Name,
	}
	if strings.TrimSpace(cfg.Postgres.User) != "" {
		if cfg.Postgres.Password == "" {
			u.User = url.User(cfg.Postgres.User)
		} else {
			u.User = url.UserPassword(cfg.Postgres.User, cfg.Postgres.Password)
		}
	}
	return u.String()
}
