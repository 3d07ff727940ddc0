package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// Chaves conhecidas do armazenamento de configurações do site
const (
	BannerKey     = "banner_images"
	CategoriesKey = "categories"
)

// Repository define a interface do armazenamento chave/valor de
// configurações do site
type Repository interface {
	// GetStringList lê uma lista de strings; chave ausente ou valor
	// malformado degradam para lista vazia
	GetStringList(ctx context.Context, key string) ([]string, error)

	// SetStringList grava (upsert) uma lista de strings
	SetStringList(ctx context.Context, key string, values []string) error
}

// SettingsRepository implementa Repository usando database/sql
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository cria uma nova instância de SettingsRepository
func NewSettingsRepository(db *sql.DB) Repository {
	return &SettingsRepository{db: db}
}

// GetStringList lê e decodifica a lista armazenada sob a chave
func (r *SettingsRepository) GetStringList(ctx context.Context, key string) ([]string, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM site_settings WHERE key = $1", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		// Valor corrompido degrada para lista vazia em vez de quebrar a
		// vitrine.
		return []string{}, nil
	}
	return values, nil
}

// SetStringList grava a lista sob a chave, criando ou substituindo
func (r *SettingsRepository) SetStringList(ctx context.Context, key string, values []string) error {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO site_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, string(raw))
	return err
}
