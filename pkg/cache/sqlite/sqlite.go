/*
 * Copyright 2018 The Trickster Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package sqlite is the SQLite implementation of the shelfcache storage client
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/trickstercache/shelfcache/pkg/cache"
	"github.com/trickstercache/shelfcache/pkg/cache/sqlite/options"
	"github.com/trickstercache/shelfcache/pkg/cache/status"

	_ "modernc.org/sqlite"
)

// CacheClient implements the cache.Client interface
var _ cache.Client = &CacheClient{}

var (
	// ErrPathRequired is returned when no database file is configured
	ErrPathRequired = errors.New("storage path is required")
	// ErrInvalidTable is returned when the table name is not a plain identifier
	ErrInvalidTable = errors.New("invalid table name")
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CacheClient persists records in a single SQLite key-value table
type CacheClient struct {
	Name   string
	Config *options.Options
	sqlDB  *sql.DB
	now    func() time.Time
}

// New returns a new, unconnected SQLite client
func New(name string, cfg *options.Options) *CacheClient {
	if cfg == nil {
		cfg = options.New()
	}
	return &CacheClient{
		Name:   name,
		Config: cfg,
		now:    time.Now,
	}
}

// Connect opens the database and creates the key-value table
func (c *CacheClient) Connect() error {
	if strings.TrimSpace(c.Config.Filename) == "" {
		return ErrPathRequired
	}
	if !tableName.MatchString(c.Config.Table) {
		return ErrInvalidTable
	}
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		filepath.Clean(c.Config.Filename), c.Config.BusyTimeoutMS)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("ping sqlite db: %w", err)
	}
	_, err = sqlDB.Exec(`CREATE TABLE IF NOT EXISTS ` + c.Config.Table + ` (
		cache_key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0
	)`)
	if err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("create table: %w", err)
	}
	c.sqlDB = sqlDB
	return nil
}

// Store upserts the record. A ttl of 0 stores the record without expiry.
func (c *CacheClient) Store(cacheKey string, data []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = c.now().Add(ttl).UnixMilli()
	}
	_, err := c.sqlDB.Exec(`INSERT INTO `+c.Config.Table+` (cache_key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		cacheKey, data, expiresAt)
	return err
}

// Retrieve returns the record for cacheKey, treating expired records as misses
func (c *CacheClient) Retrieve(cacheKey string) ([]byte, status.LookupStatus, error) {
	var data []byte
	var expiresAt int64
	err := c.sqlDB.QueryRow(`SELECT value, expires_at FROM `+c.Config.Table+
		` WHERE cache_key = ?`, cacheKey).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	if err != nil {
		return nil, status.LookupStatusError, err
	}
	if expiresAt > 0 && c.now().UnixMilli() > expiresAt {
		_ = c.Remove(cacheKey)
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	return data, status.LookupStatusHit, nil
}

// Remove deletes the records for the provided keys
func (c *CacheClient) Remove(cacheKeys ...string) error {
	if len(cacheKeys) == 0 {
		return nil
	}
	tx, err := c.sqlDB.Begin()
	if err != nil {
		return err
	}
	for _, k := range cacheKeys {
		if _, err := tx.Exec(`DELETE FROM `+c.Config.Table+` WHERE cache_key = ?`, k); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Close closes the SQLite handle
func (c *CacheClient) Close() error {
	if c.sqlDB == nil {
		return nil
	}
	err := c.sqlDB.Close()
	c.sqlDB = nil
	return err
}
