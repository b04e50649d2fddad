package source

import (
	"database/sql"
	"fmt"

	_ "github.com/databricks/databricks-sql-go"
	_ "github.com/lib/pq"
	"github.com/snowflakedb/gosnowflake"

	"github.com/de-tools/peg-lens/pkg/services/config"
	sqlstore "github.com/de-tools/peg-lens/pkg/store/sql"
)

// PostgresFactory opens a counter source backed by PostgreSQL.
func PostgresFactory(profilePath, profile, table string) (*Source, error) {
	creds, err := config.LoadProfile(profilePath, profile)
	if err != nil {
		return nil, err
	}

	sslMode := creds.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	port := creds.Port
	if port == "" {
		port = "5432"
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		creds.Host, port, creds.User, creds.Password, creds.Database, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	return &Source{
		Rows: sqlstore.NewCounterSource(db, table, sqlstore.DialectPostgres),
		db:   db,
	}, nil
}

// DatabricksFactory opens a counter source backed by a Databricks SQL
// warehouse.
func DatabricksFactory(profilePath, profile, table string) (*Source, error) {
	creds, err := config.LoadProfile(profilePath, profile)
	if err != nil {
		return nil, err
	}

	port := creds.Port
	if port == "" {
		port = "443"
	}
	dsn := fmt.Sprintf("token:%s@%s:%s/%s", creds.Token, creds.Host, port, creds.HTTPPath)

	db, err := sql.Open("databricks", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open databricks connection: %w", err)
	}

	return &Source{
		Rows: sqlstore.NewCounterSource(db, table, sqlstore.DialectDefault),
		db:   db,
	}, nil
}

// SnowflakeFactory opens a counter source backed by Snowflake.
func SnowflakeFactory(profilePath, profile, table string) (*Source, error) {
	creds, err := config.LoadProfile(profilePath, profile)
	if err != nil {
		return nil, err
	}

	dsn, err := gosnowflake.DSN(&gosnowflake.Config{
		Account:   creds.Account,
		User:      creds.User,
		Password:  creds.Password,
		Database:  creds.Database,
		Warehouse: creds.Warehouse,
		Role:      creds.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build snowflake DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snowflake connection: %w", err)
	}

	return &Source{
		Rows: sqlstore.NewCounterSource(db, table, sqlstore.DialectDefault),
		db:   db,
	}, nil
}
