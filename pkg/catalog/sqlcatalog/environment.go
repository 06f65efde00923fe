package sqlcatalog

import (
	"context"
	"database/sql"

	"github.com/go-kit/kit/log/level"
	"github.com/jmoiron/sqlx"
	"github.com/observatorium/catalogctl/pkg/catalog"
	"github.com/pkg/errors"
)

type environmentRow struct {
	ID          int64  `db:"environment_id"`
	FolderID    int64  `db:"folder_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

type variableRow struct {
	Name           string         `db:"name"`
	DataType       int            `db:"data_type"`
	Sensitive      bool           `db:"sensitive"`
	Value          sql.NullString `db:"value"`
	SensitiveValue []byte         `db:"sensitive_value"`
	Description    string         `db:"description"`
}

// Environment returns the environment with its variables. Sensitive values are
// decrypted when the session has an encryption key and are empty otherwise.
func (s *Session) Environment(ctx context.Context, folder *catalog.Folder, name string) (*catalog.Environment, error) {
	row := environmentRow{}
	err := s.db.GetContext(ctx, &row, `SELECT environment_id, folder_id, name, description FROM environments WHERE folder_id = ? AND name = ?`, folder.ID, name)
	if err == sql.ErrNoRows {
		return nil, catalog.Errorf(catalog.KindNotFound, "environment %q not found in folder %q", name, folder.Name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get environment %q", name)
	}

	env := &catalog.Environment{
		ID:          row.ID,
		FolderID:    row.FolderID,
		FolderName:  folder.Name,
		Name:        row.Name,
		Description: row.Description,
	}

	var vars []variableRow
	if err := s.db.SelectContext(ctx, &vars, `SELECT name, data_type, sensitive, value, sensitive_value, description FROM environment_variables WHERE environment_id = ? ORDER BY variable_id`, row.ID); err != nil {
		return nil, errors.Wrapf(err, "list variables of environment %q", name)
	}
	for _, v := range vars {
		value := v.Value.String
		if v.Sensitive && s.key != nil {
			if value, err = unseal(s.key, v.SensitiveValue); err != nil {
				return nil, errors.Wrapf(err, "variable %q", v.Name)
			}
		}
		env.Variables = append(env.Variables, catalog.Variable{
			Name:        v.Name,
			DataType:    catalog.DataType(v.DataType),
			Value:       value,
			Sensitive:   v.Sensitive,
			Description: v.Description,
		})
	}
	return env, nil
}

func (s *Session) CreateEnvironment(ctx context.Context, folder *catalog.Folder, name, description string) (*catalog.Environment, error) {
	if name == "" {
		return nil, errors.New("environment name cannot be empty")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO environments (folder_id, name, description, created_time) VALUES (?, ?, ?, ?)`,
		folder.ID, name, description, formatTime(s.now()),
	)
	if isUniqueViolation(err) {
		return nil, catalog.Errorf(catalog.KindConflict, "environment %q already exists in folder %q", name, folder.Name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "create environment %q", name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "environment id")
	}
	level.Debug(s.logger).Log("msg", "created environment", "folder", folder.Name, "environment", name)
	return &catalog.Environment{ID: id, FolderID: folder.ID, FolderName: folder.Name, Name: name, Description: description}, nil
}

// DropEnvironment deletes env together with its variables.
func (s *Session) DropEnvironment(ctx context.Context, env *catalog.Environment) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM environments WHERE environment_id = ?`, env.ID)
	if err != nil {
		return errors.Wrapf(err, "drop environment %q", env.Name)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return catalog.Errorf(catalog.KindNotFound, "environment %q not found in folder %q", env.Name, env.FolderName)
	}
	level.Debug(s.logger).Log("msg", "dropped environment", "folder", env.FolderName, "environment", env.Name)
	return nil
}

// AlterEnvironment persists the description and the full variable set of env.
func (s *Session) AlterEnvironment(ctx context.Context, env *catalog.Environment) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE environments SET description = ? WHERE environment_id = ?`, env.Description, env.ID)
		if err != nil {
			return errors.Wrapf(err, "update environment %q", env.Name)
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			return catalog.Errorf(catalog.KindNotFound, "environment %q not found in folder %q", env.Name, env.FolderName)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM environment_variables WHERE environment_id = ?`, env.ID); err != nil {
			return errors.Wrap(err, "delete variables")
		}
		for _, v := range env.Variables {
			value, sealed := sql.NullString{String: v.Value, Valid: true}, []byte(nil)
			if v.Sensitive {
				if s.key == nil {
					return catalog.Errorf(catalog.KindConfigFormat, "variable %q is sensitive but no encryption key is configured", v.Name)
				}
				if sealed, err = seal(s.key, v.Value); err != nil {
					return errors.Wrapf(err, "seal variable %q", v.Name)
				}
				value = sql.NullString{}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO environment_variables (environment_id, name, data_type, sensitive, value, sensitive_value, description) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				env.ID, v.Name, int(v.DataType), v.Sensitive, value, sealed, v.Description,
			)
			if isUniqueViolation(err) {
				return catalog.Errorf(catalog.KindConflict, "variable %q defined twice in environment %q", v.Name, env.Name)
			}
			if err != nil {
				return errors.Wrapf(err, "insert variable %q", v.Name)
			}
		}
		return nil
	})
}
