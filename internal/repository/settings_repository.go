package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-manager-api/internal/models"
)

// SettingsRepository persists the single settings row.
type SettingsRepository struct {
	db sqlx.ExtContext
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(db sqlx.ExtContext) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the stored settings. The boolean is false when none exist.
func (r *SettingsRepository) Get(ctx context.Context) (models.Settings, bool, error) {
	const query = `SELECT gym_name, gym_logo, whatsapp_template_agenda, whatsapp_template_debt,
simulated_date, default_amount, max_capacity_per_shift FROM settings WHERE id = 1`
	var row settingsRow
	if err := sqlx.GetContext(ctx, r.db, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Settings{}, false, nil
		}
		return models.Settings{}, false, fmt.Errorf("get settings: %w", err)
	}
	return row.model(), true, nil
}

// Save writes the full settings row.
func (r *SettingsRepository) Save(ctx context.Context, settings models.Settings) error {
	const query = `INSERT INTO settings (id, gym_name, gym_logo, whatsapp_template_agenda, whatsapp_template_debt,
simulated_date, default_amount, max_capacity_per_shift, updated_at)
VALUES (1, :gym_name, :gym_logo, :whatsapp_template_agenda, :whatsapp_template_debt,
:simulated_date, :default_amount, :max_capacity_per_shift, NOW())
ON CONFLICT (id) DO UPDATE SET gym_name = EXCLUDED.gym_name, gym_logo = EXCLUDED.gym_logo,
whatsapp_template_agenda = EXCLUDED.whatsapp_template_agenda,
whatsapp_template_debt = EXCLUDED.whatsapp_template_debt, simulated_date = EXCLUDED.simulated_date,
default_amount = EXCLUDED.default_amount, max_capacity_per_shift = EXCLUDED.max_capacity_per_shift,
updated_at = EXCLUDED.updated_at`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, newSettingsRow(settings)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Update writes only the fields present in the patch. When no row exists
// yet, defaults with the patch applied are inserted.
func (r *SettingsRepository) Update(ctx context.Context, patch models.SettingsPatch) error {
	if patch.Empty() {
		return nil
	}
	sets := make([]string, 0, 8)
	args := make([]interface{}, 0, 8)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.GymName != nil {
		add("gym_name", *patch.GymName)
	}
	if patch.ClearLogo {
		add("gym_logo", nil)
	} else if patch.GymLogo != nil {
		add("gym_logo", *patch.GymLogo)
	}
	if patch.WhatsappTemplateAgenda != nil {
		add("whatsapp_template_agenda", *patch.WhatsappTemplateAgenda)
	}
	if patch.WhatsappTemplateDebt != nil {
		add("whatsapp_template_debt", *patch.WhatsappTemplateDebt)
	}
	if patch.SimulatedDate != nil {
		add("simulated_date", nullTime(*patch.SimulatedDate))
	}
	if patch.DefaultAmount != nil {
		add("default_amount", *patch.DefaultAmount)
	}
	if patch.MaxCapacityPerShift != nil {
		add("max_capacity_per_shift", *patch.MaxCapacityPerShift)
	}
	sets = append(sets, "updated_at = NOW()")

	query := "UPDATE settings SET " + strings.Join(sets, ", ") + " WHERE id = 1"
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update settings rows: %w", err)
	}
	if affected > 0 {
		return nil
	}
	return r.Save(ctx, models.DefaultSettings().Apply(patch))
}
