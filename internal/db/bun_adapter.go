// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/toeirei/confvault/internal/model"
	"github.com/uptrace/bun"
)

// bunStore implements Store on top of a long-lived *bun.DB. The dialect
// differences are absorbed by Bun; the per-engine store types in sqlite.go,
// postgres.go and mysql.go embed this and only add engine-specific behavior.
type bunStore struct {
	bun *bun.DB
}

// ConnectionModel maps the `database_connections` table for Bun queries.
type ConnectionModel struct {
	bun.BaseModel `bun:"table:database_connections"`
	ID            int       `bun:"id,pk,autoincrement"`
	Name          string    `bun:"name"`
	Engine        string    `bun:"engine"`
	Host          string    `bun:"host"`
	Port          int       `bun:"port"`
	DatabaseName  string    `bun:"database_name"`
	Username      string    `bun:"username"`
	Password      string    `bun:"password"`
	SSLMode       string    `bun:"ssl_mode"`
	IsActive      bool      `bun:"is_active"`
	CreatedAt     time.Time `bun:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

// StorageProviderModel maps the `storage_providers` table.
type StorageProviderModel struct {
	bun.BaseModel `bun:"table:storage_providers"`
	ID            int       `bun:"id,pk,autoincrement"`
	Name          string    `bun:"name"`
	Provider      string    `bun:"provider"`
	Config        string    `bun:"config"`
	IsActive      bool      `bun:"is_active"`
	CreatedAt     time.Time `bun:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

// AdminModel maps the `admin_identities` table.
type AdminModel struct {
	bun.BaseModel `bun:"table:admin_identities"`
	ID            int          `bun:"id,pk,autoincrement"`
	Username      string       `bun:"username"`
	Email         string       `bun:"email"`
	PasswordHash  string       `bun:"password_hash"`
	Role          string       `bun:"role"`
	IsActive      bool         `bun:"is_active"`
	CreatedAt     time.Time    `bun:"created_at"`
	LastLoginAt   sql.NullTime `bun:"last_login_at"`
}

// ConfigEntryModel maps the `config_entries` table. The key column is quoted
// through bun.Ident in raw clauses because `key` is reserved in MySQL.
type ConfigEntryModel struct {
	bun.BaseModel `bun:"table:config_entries"`
	Key           string    `bun:"key,pk"`
	Value         string    `bun:"value"`
	ValueType     string    `bun:"value_type"`
	Category      string    `bun:"category"`
	Description   string    `bun:"description"`
	IsPublic      bool      `bun:"is_public"`
	CreatedAt     time.Time `bun:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

// --- Mapping helpers (centralized conversions) ---

func connectionModelToModel(m ConnectionModel) model.DatabaseConnectionProfile {
	return model.DatabaseConnectionProfile{
		ID:        m.ID,
		Name:      m.Name,
		Engine:    m.Engine,
		Host:      m.Host,
		Port:      m.Port,
		Database:  m.DatabaseName,
		Username:  m.Username,
		Password:  m.Password,
		SSLMode:   m.SSLMode,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func storageProviderModelToModel(m StorageProviderModel) model.StorageProviderProfile {
	return model.StorageProviderProfile{
		ID:        m.ID,
		Name:      m.Name,
		Provider:  m.Provider,
		Config:    m.Config,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func adminModelToModel(m AdminModel) model.AdminIdentity {
	a := model.AdminIdentity{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
	}
	if m.LastLoginAt.Valid {
		t := m.LastLoginAt.Time
		a.LastLoginAt = &t
	}
	return a
}

func configEntryModelToModel(m ConfigEntryModel) model.ConfigEntry {
	return model.ConfigEntry{
		Key:         m.Key,
		Value:       m.Value,
		Type:        model.ValueType(m.ValueType),
		Category:    m.Category,
		Description: m.Description,
		IsPublic:    m.IsPublic,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// --- Connection profile methods ---

// ListConnections returns all connection profiles ordered by name.
func (s *bunStore) ListConnections(ctx context.Context) ([]model.DatabaseConnectionProfile, error) {
	var cm []ConnectionModel
	if err := s.bun.NewSelect().Model(&cm).OrderExpr("name").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.DatabaseConnectionProfile, 0, len(cm))
	for _, m := range cm {
		out = append(out, connectionModelToModel(m))
	}
	return out, nil
}

// GetConnection returns one profile by id, or ErrNotFound.
func (s *bunStore) GetConnection(ctx context.Context, id int) (*model.DatabaseConnectionProfile, error) {
	var m ConnectionModel
	err := s.bun.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p := connectionModelToModel(m)
	return &p, nil
}

// AddConnection inserts a new profile (never active on insert) and returns its ID.
func (s *bunStore) AddConnection(ctx context.Context, p model.DatabaseConnectionProfile) (int, error) {
	now := time.Now()
	m := &ConnectionModel{
		Name:         p.Name,
		Engine:       p.Engine,
		Host:         p.Host,
		Port:         p.Port,
		DatabaseName: p.Database,
		Username:     p.Username,
		Password:     p.Password,
		SSLMode:      p.SSLMode,
		IsActive:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.bun.NewInsert().Model(m).
		Column("name", "engine", "host", "port", "database_name", "username", "password", "ssl_mode", "is_active", "created_at", "updated_at").
		Returning("id").Exec(ctx); err != nil {
		return 0, MapDBError(err)
	}
	return m.ID, nil
}

// UpdateConnection applies a partial-field patch. Absence of the target row
// is detected from the affected-row count, not a pre-check, so a concurrent
// delete cannot race past it.
func (s *bunStore) UpdateConnection(ctx context.Context, id int, patch model.ConnectionUpdate) error {
	q := s.bun.NewUpdate().Model((*ConnectionModel)(nil)).Where("id = ?", id)
	if patch.Name != nil {
		q = q.Set("name = ?", *patch.Name)
	}
	if patch.Engine != nil {
		q = q.Set("engine = ?", *patch.Engine)
	}
	if patch.Host != nil {
		q = q.Set("host = ?", *patch.Host)
	}
	if patch.Port != nil {
		q = q.Set("port = ?", *patch.Port)
	}
	if patch.Database != nil {
		q = q.Set("database_name = ?", *patch.Database)
	}
	if patch.Username != nil {
		q = q.Set("username = ?", *patch.Username)
	}
	if patch.Password != nil {
		q = q.Set("password = ?", *patch.Password)
	}
	if patch.SSLMode != nil {
		q = q.Set("ssl_mode = ?", *patch.SSLMode)
	}
	q = q.Set("updated_at = ?", time.Now())

	res, err := q.Exec(ctx)
	if err != nil {
		return MapDBError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteConnection removes a profile unless it is currently active.
func (s *bunStore) DeleteConnection(ctx context.Context, id int) error {
	tx, err := s.bun.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var isActive bool
	err = tx.NewSelect().Model((*ConnectionModel)(nil)).Column("is_active").Where("id = ?", id).Limit(1).Scan(ctx, &isActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	if isActive {
		return ErrActiveConnectionDelete
	}
	if _, err := tx.NewDelete().Model((*ConnectionModel)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return err
	}
	return tx.Commit()
}

// SetActiveConnection clears the active flag on every profile and sets it on
// the target, inside one transaction. The database serializes competing
// calls, so the table always converges to exactly one active row.
func (s *bunStore) SetActiveConnection(ctx context.Context, id int) error {
	tx, err := s.bun.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Raw UPDATE because Bun requires a WHERE clause on Update/Delete to
	// prevent accidental full-table updates.
	if _, err := ExecRaw(ctx, tx, "UPDATE database_connections SET is_active = FALSE"); err != nil {
		return fmt.Errorf("failed to deactivate connection profiles: %w", err)
	}

	res, err := tx.NewUpdate().Model((*ConnectionModel)(nil)).
		Set("is_active = ?", true).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to activate connection profile %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// GetActiveConnection returns the single active profile, or (nil, nil) when
// none is active. Absence is a valid state on a fresh install.
func (s *bunStore) GetActiveConnection(ctx context.Context) (*model.DatabaseConnectionProfile, error) {
	var m ConnectionModel
	err := s.bun.NewSelect().Model(&m).Where("is_active = ?", true).Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p := connectionModelToModel(m)
	return &p, nil
}

// --- Storage provider methods ---

// ListStorageProviders returns all provider profiles ordered by name.
func (s *bunStore) ListStorageProviders(ctx context.Context) ([]model.StorageProviderProfile, error) {
	var pm []StorageProviderModel
	if err := s.bun.NewSelect().Model(&pm).OrderExpr("name").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.StorageProviderProfile, 0, len(pm))
	for _, m := range pm {
		out = append(out, storageProviderModelToModel(m))
	}
	return out, nil
}

// AddStorageProvider inserts a new provider profile and returns its ID.
func (s *bunStore) AddStorageProvider(ctx context.Context, p model.StorageProviderProfile) (int, error) {
	now := time.Now()
	m := &StorageProviderModel{
		Name:      p.Name,
		Provider:  p.Provider,
		Config:    p.Config,
		IsActive:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.bun.NewInsert().Model(m).
		Column("name", "provider", "config", "is_active", "created_at", "updated_at").
		Returning("id").Exec(ctx); err != nil {
		return 0, MapDBError(err)
	}
	return m.ID, nil
}

// DeleteStorageProvider removes a provider profile unless it is active. The
// guard matches the connection registry so activation state is handled
// uniformly across both resource categories.
func (s *bunStore) DeleteStorageProvider(ctx context.Context, id int) error {
	tx, err := s.bun.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var isActive bool
	err = tx.NewSelect().Model((*StorageProviderModel)(nil)).Column("is_active").Where("id = ?", id).Limit(1).Scan(ctx, &isActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	if isActive {
		return ErrActiveConnectionDelete
	}
	if _, err := tx.NewDelete().Model((*StorageProviderModel)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return err
	}
	return tx.Commit()
}

// SetActiveStorageProvider mirrors SetActiveConnection for the provider table.
func (s *bunStore) SetActiveStorageProvider(ctx context.Context, id int) error {
	tx, err := s.bun.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := ExecRaw(ctx, tx, "UPDATE storage_providers SET is_active = FALSE"); err != nil {
		return fmt.Errorf("failed to deactivate storage providers: %w", err)
	}

	res, err := tx.NewUpdate().Model((*StorageProviderModel)(nil)).
		Set("is_active = ?", true).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to activate storage provider %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// GetActiveStorageProvider returns the active provider, or (nil, nil).
func (s *bunStore) GetActiveStorageProvider(ctx context.Context) (*model.StorageProviderProfile, error) {
	var m StorageProviderModel
	err := s.bun.NewSelect().Model(&m).Where("is_active = ?", true).Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p := storageProviderModelToModel(m)
	return &p, nil
}

// --- Admin identity methods ---

// GetAdminByUsername returns the active identity for username, or (nil, nil)
// when absent. Inactive identities are treated as absent on purpose: callers
// must not be able to distinguish the two.
func (s *bunStore) GetAdminByUsername(ctx context.Context, username string) (*model.AdminIdentity, error) {
	var m AdminModel
	err := s.bun.NewSelect().Model(&m).
		Where("username = ?", username).
		Where("is_active = ?", true).
		Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a := adminModelToModel(m)
	return &a, nil
}

// EnsureAdmin inserts an identity if no row with that username exists yet.
// Idempotent; used to seed the default administrator at bootstrap.
func (s *bunStore) EnsureAdmin(ctx context.Context, username, email, passwordHash, role string) error {
	exists, err := s.bun.NewSelect().Model((*AdminModel)(nil)).Where("username = ?", username).Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	m := &AdminModel{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if _, err := s.bun.NewInsert().Model(m).
		Column("username", "email", "password_hash", "role", "is_active", "created_at").
		Exec(ctx); err != nil {
		// A concurrent bootstrap may have inserted the same username; that
		// still satisfies insert-if-absent.
		if MapDBError(err) == ErrDuplicate {
			return nil
		}
		return err
	}
	return nil
}

// UpdateAdminLastLogin stamps the identity's last successful login.
func (s *bunStore) UpdateAdminLastLogin(ctx context.Context, id int) error {
	res, err := s.bun.NewUpdate().Model((*AdminModel)(nil)).
		Set("last_login_at = ?", time.Now()).
		Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAdminPassword replaces the stored hash for username.
func (s *bunStore) UpdateAdminPassword(ctx context.Context, username, passwordHash string) error {
	res, err := s.bun.NewUpdate().Model((*AdminModel)(nil)).
		Set("password_hash = ?", passwordHash).
		Where("username = ?", username).Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Config entry methods ---

// GetConfigEntry returns the entry for key, or (nil, nil) when absent.
func (s *bunStore) GetConfigEntry(ctx context.Context, key string) (*model.ConfigEntry, error) {
	var m ConfigEntryModel
	err := s.bun.NewSelect().Model(&m).Where("? = ?", bun.Ident("key"), key).Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	e := configEntryModelToModel(m)
	return &e, nil
}

// GetAllConfigEntries returns every entry ordered by category, then key.
func (s *bunStore) GetAllConfigEntries(ctx context.Context) ([]model.ConfigEntry, error) {
	var em []ConfigEntryModel
	if err := s.bun.NewSelect().Model(&em).OrderExpr("category, ?", bun.Ident("key")).Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.ConfigEntry, 0, len(em))
	for _, m := range em {
		out = append(out, configEntryModelToModel(m))
	}
	return out, nil
}

// GetPublicConfigEntries returns the visibility subset exposed to
// unauthenticated readers.
func (s *bunStore) GetPublicConfigEntries(ctx context.Context) ([]model.ConfigEntry, error) {
	var em []ConfigEntryModel
	if err := s.bun.NewSelect().Model(&em).
		Where("is_public = ?", true).
		OrderExpr("category, ?", bun.Ident("key")).Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.ConfigEntry, 0, len(em))
	for _, m := range em {
		out = append(out, configEntryModelToModel(m))
	}
	return out, nil
}

// SetConfigEntry upserts an entry: update when the key exists, insert
// otherwise, inside one transaction so the key stays unique under
// concurrent writers across all three dialects.
func (s *bunStore) SetConfigEntry(ctx context.Context, e model.ConfigEntry) error {
	tx, err := s.bun.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	res, err := tx.NewUpdate().Model((*ConfigEntryModel)(nil)).
		Set("value = ?", e.Value).
		Set("value_type = ?", string(e.Type)).
		Set("category = ?", e.Category).
		Set("description = ?", e.Description).
		Set("is_public = ?", e.IsPublic).
		Set("updated_at = ?", now).
		Where("? = ?", bun.Ident("key"), e.Key).Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		m := &ConfigEntryModel{
			Key:         e.Key,
			Value:       e.Value,
			ValueType:   string(e.Type),
			Category:    e.Category,
			Description: e.Description,
			IsPublic:    e.IsPublic,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := tx.NewInsert().Model(m).Exec(ctx); err != nil {
			return MapDBError(err)
		}
	}
	return tx.Commit()
}

// Ping probes storage liveness.
func (s *bunStore) Ping(ctx context.Context) error {
	return s.bun.PingContext(ctx)
}
