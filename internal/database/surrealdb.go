package database

import (
	"context"
	"fmt"
	"net"

	"github.com/surrealdb/surrealdb.go"
)

// Endpoint returns the websocket URL for the configured host.
// Port 443 selects a TLS connection.
func (c Config) Endpoint() string {
	scheme := "ws"
	if c.Port == "443" {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(c.Host, c.Port))
}

// SurrealDB implements the Database interface for SurrealDB
type SurrealDB struct {
	db     *surrealdb.DB
	config Config
}

// NewSurrealDB creates a new SurrealDB instance
func NewSurrealDB(cfg Config) *SurrealDB {
	return &SurrealDB{
		config: cfg,
	}
}

// Connect establishes a connection to SurrealDB and selects the namespace and database
func (s *SurrealDB) Connect(ctx context.Context) error {
	db, err := surrealdb.FromEndpointURLString(ctx, s.config.Endpoint())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if s.config.User != "" {
		if _, err := db.SignIn(ctx, &surrealdb.Auth{
			Username: s.config.User,
			Password: s.config.Password,
		}); err != nil {
			_ = db.Close(ctx)
			return fmt.Errorf("%w: signin failed: %v", ErrConnection, err)
		}
	}

	if err := db.Use(ctx, s.config.Namespace, s.config.Database); err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("%w: use failed: %v", ErrConnection, err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SurrealDB) Close() error {
	if s.db != nil {
		return s.db.Close(context.Background())
	}
	return nil
}

// Ping checks the database connection
func (s *SurrealDB) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrConnection
	}
	if _, err := s.db.Version(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Query executes a query and returns one {status, result} map per statement
func (s *SurrealDB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	if s.db == nil {
		return nil, ErrConnection
	}

	results, err := surrealdb.Query[interface{}](ctx, s.db, query, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	if results == nil {
		return nil, nil
	}

	output := make([]interface{}, 0, len(*results))
	for _, r := range *results {
		if r.Status != "OK" {
			if r.Error != nil {
				return nil, fmt.Errorf("%w: %s", ErrQuery, r.Error.Message)
			}
			return nil, ErrQuery
		}
		output = append(output, map[string]interface{}{
			"status": r.Status,
			"result": r.Result,
		})
	}

	return output, nil
}

// QueryOne executes a query and returns the first record of the last statement
func (s *SurrealDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	results, err := s.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return FirstRecord(results)
}

// Execute runs a query without returning results
func (s *SurrealDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := s.Query(ctx, query, vars)
	return err
}

// FirstRecord unwraps the {status, result} wrapper of the last statement and
// returns its first record. Empty results report ErrNotFound.
func FirstRecord(results []interface{}) (interface{}, error) {
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	last := results[len(results)-1]
	resp, ok := last.(map[string]interface{})
	if !ok {
		return last, nil
	}
	status, ok := resp["status"].(string)
	if !ok || status != "OK" {
		return last, nil
	}
	if resultData, ok := resp["result"].([]interface{}); ok {
		if len(resultData) == 0 {
			return nil, ErrNotFound
		}
		return resultData[0], nil
	}
	if resp["result"] == nil {
		return nil, ErrNotFound
	}
	// Scalar values are returned as-is
	return resp["result"], nil
}
