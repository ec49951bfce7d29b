package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-export/internal/leads"
	"github.com/sells-group/lead-export/internal/store"
	"github.com/sells-group/lead-export/pkg/apollo"
)

const defaultSQLiteDSN = "leads.db"

// initStore opens and migrates the configured history store. The "none"
// driver returns a nil Store.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)

	switch cfg.Store.Driver {
	case "none":
		return nil, nil
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		st, err = openSQLite(dsn)
	case "postgres":
		st, err = openPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func openSQLite(dsn string) (store.Store, error) {
	s, err := store.NewSQLite(dsn)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openPostgres(ctx context.Context, url string) (store.Store, error) {
	s, err := store.NewPostgres(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// newFetcher builds the retrieval loop from the apollo config.
func newFetcher() *leads.Fetcher {
	client := apollo.NewClient(cfg.Apollo.Key, apollo.WithBaseURL(cfg.Apollo.BaseURL))
	return leads.NewFetcher(client, cfg.Apollo.PageTimeout())
}
