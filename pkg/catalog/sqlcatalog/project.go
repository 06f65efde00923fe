package sqlcatalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-kit/kit/log/level"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/observatorium/catalogctl/pkg/catalog"
	"github.com/observatorium/catalogctl/pkg/params"
	"github.com/pkg/errors"
)

const operationDeployProject = "deploy_project"

type projectRow struct {
	ID           int64  `db:"project_id"`
	FolderID     int64  `db:"folder_id"`
	Name         string `db:"name"`
	Version      int64  `db:"object_version_lsn"`
	LastDeployed string `db:"last_deployed_time"`
}

type parameterRow struct {
	Name          string         `db:"parameter_name"`
	DataType      int            `db:"data_type"`
	DesignDefault string         `db:"design_default_value"`
	Sensitive     bool           `db:"sensitive"`
	Description   string         `db:"description"`
	ValueType     string         `db:"value_type"`
	DefaultValue  string         `db:"default_value"`
	Referenced    sql.NullString `db:"referenced_variable_name"`
}

type referenceRow struct {
	EnvironmentName string `db:"environment_name"`
	FolderName      string `db:"environment_folder_name"`
}

// DeployProject stores artifact as project name in folder. Deploying over an existing
// project replaces its artifact and parameters, bumps its version and keeps the
// environment references of parameters that still exist.
func (s *Session) DeployProject(ctx context.Context, folder *catalog.Folder, name string, artifact []byte) (*catalog.OperationResult, error) {
	res := &catalog.OperationResult{ID: uuid.New().String(), Status: catalog.StatusSuccess}
	info := func(format string, args ...interface{}) {
		res.Messages = append(res.Messages, catalog.Message{Type: catalog.MessageInformation, Text: fmt.Sprintf(format, args...)})
	}
	fail := func(format string, args ...interface{}) {
		res.Status = catalog.StatusFailed
		res.Messages = append(res.Messages, catalog.Message{Type: catalog.MessageError, Text: fmt.Sprintf(format, args...)})
	}

	info("Deploying project %q to folder %q.", name, folder.Name)
	var decls []params.Declaration
	if name == "" {
		fail("The project name cannot be empty.")
	} else if len(artifact) == 0 {
		fail("The project file is empty.")
	} else {
		var err error
		if decls, err = readProjectParameters(artifact); err != nil {
			fail("The project file is not valid: %v.", err)
		}
	}
	if res.Status != catalog.StatusSuccess {
		if err := s.withTx(ctx, func(tx *sqlx.Tx) error {
			return s.recordOperation(ctx, tx, name, res)
		}); err != nil {
			return nil, err
		}
		return res, nil
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		id, version, err := s.upsertProject(ctx, tx, folder, name, artifact)
		if err != nil {
			return err
		}
		kept, err := replaceParameters(ctx, tx, id, decls)
		if err != nil {
			return err
		}
		info("Project %q version %d deployed with %d parameters.", name, version, len(decls))
		if kept > 0 {
			info("Kept %d parameter references from the previous version.", kept)
		}
		return s.recordOperation(ctx, tx, name, res)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "deploy project %q", name)
	}
	level.Debug(s.logger).Log("msg", "deployed project", "folder", folder.Name, "project", name, "operation", res.ID)
	return res, nil
}

func (s *Session) upsertProject(ctx context.Context, tx *sqlx.Tx, folder *catalog.Folder, name string, artifact []byte) (id, version int64, err error) {
	now := s.now().UTC()

	row := projectRow{}
	err = tx.GetContext(ctx, &row, `SELECT project_id, folder_id, name, object_version_lsn, last_deployed_time FROM projects WHERE folder_id = ? AND name = ?`, folder.ID, name)
	if err == sql.ErrNoRows {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO projects (folder_id, name, object_version_lsn, artifact, created_time, last_deployed_time) VALUES (?, ?, 1, ?, ?, ?)`,
			folder.ID, name, artifact, formatTime(now), formatTime(now),
		)
		if err != nil {
			return 0, 0, errors.Wrap(err, "insert project")
		}
		id, err = res.LastInsertId()
		return id, 1, errors.Wrap(err, "project id")
	}
	if err != nil {
		return 0, 0, errors.Wrap(err, "get project")
	}

	prev, err := parseTime(row.LastDeployed)
	if err != nil {
		return 0, 0, err
	}
	// Deployment times are strictly increasing per project, even on coarse clocks.
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE projects SET artifact = ?, object_version_lsn = ?, last_deployed_time = ? WHERE project_id = ?`,
		artifact, row.Version+1, formatTime(now), row.ID,
	); err != nil {
		return 0, 0, errors.Wrap(err, "update project")
	}
	return row.ID, row.Version + 1, nil
}

// replaceParameters swaps the parameters of project id for decls. Parameters that keep
// their name keep an existing environment reference. It returns how many did.
func replaceParameters(ctx context.Context, tx *sqlx.Tx, id int64, decls []params.Declaration) (int, error) {
	var existing []parameterRow
	if err := tx.SelectContext(ctx, &existing, `SELECT parameter_name, data_type, design_default_value, sensitive, description, value_type, default_value, referenced_variable_name FROM object_parameters WHERE project_id = ?`, id); err != nil {
		return 0, errors.Wrap(err, "list parameters")
	}
	refs := map[string]string{}
	for _, p := range existing {
		if catalog.ValueType(p.ValueType) == catalog.ValueReferenced && p.Referenced.Valid {
			refs[p.Name] = p.Referenced.String
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM object_parameters WHERE project_id = ?`, id); err != nil {
		return 0, errors.Wrap(err, "delete parameters")
	}

	kept := 0
	for _, d := range decls {
		vt, value, ref := catalog.ValueLiteral, d.Value, sql.NullString{}
		if v, ok := refs[d.Name]; ok {
			vt, value, ref = catalog.ValueReferenced, "", sql.NullString{String: v, Valid: true}
			kept++
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO object_parameters (project_id, parameter_name, data_type, design_default_value, sensitive, description, value_type, default_value, referenced_variable_name) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, d.Name, int(d.DataType), d.Value, d.Sensitive, d.Description, string(vt), value, ref,
		); err != nil {
			return 0, errors.Wrapf(err, "insert parameter %q", d.Name)
		}
	}
	return kept, nil
}

func (s *Session) recordOperation(ctx context.Context, tx *sqlx.Tx, object string, res *catalog.OperationResult) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO operations (operation_id, catalog_id, operation_type, object_name, status, created_time) VALUES (?, ?, ?, ?, ?, ?)`,
		res.ID, s.catalogID, operationDeployProject, object, string(res.Status), formatTime(s.now()),
	); err != nil {
		return errors.Wrap(err, "record operation")
	}
	for _, m := range res.Messages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO operation_messages (operation_id, message_type, message) VALUES (?, ?, ?)`,
			res.ID, string(m.Type), m.Text,
		); err != nil {
			return errors.Wrap(err, "record operation message")
		}
	}
	return nil
}

func (s *Session) Project(ctx context.Context, folder *catalog.Folder, name string) (*catalog.Project, error) {
	row := projectRow{}
	err := s.db.GetContext(ctx, &row, `SELECT project_id, folder_id, name, object_version_lsn, last_deployed_time FROM projects WHERE folder_id = ? AND name = ?`, folder.ID, name)
	if err == sql.ErrNoRows {
		return nil, catalog.Errorf(catalog.KindNotFound, "project %q not found in folder %q", name, folder.Name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get project %q", name)
	}
	deployed, err := parseTime(row.LastDeployed)
	if err != nil {
		return nil, err
	}

	p := &catalog.Project{
		ID:           row.ID,
		FolderID:     row.FolderID,
		FolderName:   folder.Name,
		Name:         row.Name,
		Version:      row.Version,
		LastDeployed: deployed,
	}

	var paramRows []parameterRow
	if err := s.db.SelectContext(ctx, &paramRows, `SELECT parameter_name, data_type, design_default_value, sensitive, description, value_type, default_value, referenced_variable_name FROM object_parameters WHERE project_id = ? ORDER BY parameter_id`, row.ID); err != nil {
		return nil, errors.Wrapf(err, "list parameters of project %q", name)
	}
	for _, r := range paramRows {
		prm := catalog.Parameter{
			Name:          r.Name,
			DataType:      catalog.DataType(r.DataType),
			DesignDefault: r.DesignDefault,
			Sensitive:     r.Sensitive,
			Description:   r.Description,
			ValueType:     catalog.ValueType(r.ValueType),
			Value:         r.DefaultValue,
		}
		if prm.Referenced() {
			prm.Value = r.Referenced.String
		}
		p.Parameters = append(p.Parameters, prm)
	}

	var refRows []referenceRow
	if err := s.db.SelectContext(ctx, &refRows, `SELECT environment_name, environment_folder_name FROM environment_references WHERE project_id = ? ORDER BY reference_id`, row.ID); err != nil {
		return nil, errors.Wrapf(err, "list references of project %q", name)
	}
	for _, r := range refRows {
		p.References = append(p.References, catalog.Reference{EnvironmentName: r.EnvironmentName, FolderName: r.FolderName})
	}
	return p, nil
}

// AlterProject persists the parameter values and environment references of p.
func (s *Session) AlterProject(ctx context.Context, p *catalog.Project) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var exists int
		if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM projects WHERE project_id = ?`, p.ID); err != nil {
			return errors.Wrapf(err, "get project %q", p.Name)
		}
		if exists == 0 {
			return catalog.Errorf(catalog.KindNotFound, "project %q not found", p.Name)
		}

		for _, prm := range p.Parameters {
			value, ref := prm.Value, sql.NullString{}
			if prm.Referenced() {
				value, ref = "", sql.NullString{String: prm.Value, Valid: true}
			}
			res, err := tx.ExecContext(ctx,
				`UPDATE object_parameters SET value_type = ?, default_value = ?, referenced_variable_name = ? WHERE project_id = ? AND parameter_name = ?`,
				string(prm.ValueType), value, ref, p.ID, prm.Name,
			)
			if err != nil {
				return errors.Wrapf(err, "update parameter %q", prm.Name)
			}
			if n, err := res.RowsAffected(); err != nil || n == 0 {
				return catalog.Errorf(catalog.KindUnknownParameter, "project %q has no parameter %q", p.Name, prm.Name)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM environment_references WHERE project_id = ?`, p.ID); err != nil {
			return errors.Wrap(err, "delete references")
		}
		for _, r := range p.References {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO environment_references (project_id, environment_name, environment_folder_name) VALUES (?, ?, ?)`,
				p.ID, r.EnvironmentName, r.FolderName,
			)
			if isUniqueViolation(err) {
				return catalog.Errorf(catalog.KindConflict, "project %q references environment %q in folder %q twice", p.Name, r.EnvironmentName, r.FolderName)
			}
			if err != nil {
				return errors.Wrapf(err, "insert reference to %q", r.EnvironmentName)
			}
		}
		return nil
	})
}
