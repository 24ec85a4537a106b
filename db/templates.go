package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/onnwee/lingua-bot/i18n"
)

// LoadTemplates reads the whole template table. An empty table is treated the
// same as a missing configuration record: fatal for the invocation.
func LoadTemplates(ctx context.Context, dbx *sql.DB) (i18n.Templates, error) {
	rows, err := dbx.QueryContext(ctx, `SELECT lang, key, template FROM templates`)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	t := make(i18n.Templates)
	for rows.Next() {
		var lang, key, tpl string
		if err := rows.Scan(&lang, &key, &tpl); err != nil {
			return nil, fmt.Errorf("scan template row: %w", err)
		}
		if t[lang] == nil {
			t[lang] = make(map[string]string)
		}
		t[lang][key] = tpl
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("template table is empty")
	}
	return t, nil
}

// SaveTemplates upserts every entry of t.
func SaveTemplates(ctx context.Context, dbx *sql.DB, t i18n.Templates) error {
	for lang, m := range t {
		for key, tpl := range m {
			if _, err := dbx.ExecContext(ctx,
				`INSERT INTO templates(lang, key, template, updated_at) VALUES($1,$2,$3,NOW())
				 ON CONFLICT(lang, key) DO UPDATE SET template=EXCLUDED.template, updated_at=NOW()`,
				lang, key, tpl); err != nil {
				return fmt.Errorf("save template %s/%s: %w", lang, key, err)
			}
		}
	}
	return nil
}
