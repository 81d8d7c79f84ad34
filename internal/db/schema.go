package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh AUDIT+ installs.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Tests load it via
// GetSchemaSQL() instead of hardcoding CREATE TABLE statements, so a repository
// that references a missing column fails immediately with "no such column".
//
// # Deletion Rules
//
// Users and catalog values are deactivated, never deleted: no table cascades from
// them and no repository issues DELETE against them. Universe projects and plans
// cascade to their trees. Findings reference the plan tree without cascade, so a
// plan-project that still has findings cannot be removed.
const SchemaSQL = `
-- Users
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	full_name TEXT NOT NULL,
	email TEXT,
	role TEXT NOT NULL CHECK(role IN ('auditor', 'supervisor', 'auditor_campo', 'auditado')) DEFAULT 'auditado',
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Catalog values (audit types, processes, areas)
CREATE TABLE IF NOT EXISTS catalog_entries (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL CHECK(type IN ('tipo_auditoria', 'proceso', 'area')),
	value TEXT NOT NULL,
	description TEXT,
	is_active INTEGER NOT NULL DEFAULT 1,
	display_order INTEGER NOT NULL DEFAULT 0,
	UNIQUE(type, value)
);

-- Criticality weights, one row per factor
CREATE TABLE IF NOT EXISTS evaluation_weights (
	factor TEXT PRIMARY KEY,
	label TEXT NOT NULL,
	weight REAL NOT NULL DEFAULT 0,
	description TEXT,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Auditable universe
CREATE TABLE IF NOT EXISTS universe_projects (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	objective TEXT,
	audit_type TEXT,
	process TEXT,
	planned_start TEXT,
	planned_end TEXT,
	created_by TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (created_by) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS universe_sections (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	code TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	sort_order INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (project_id) REFERENCES universe_projects(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS universe_subsections (
	id TEXT PRIMARY KEY,
	section_id TEXT NOT NULL,
	code TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	sort_order INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (section_id) REFERENCES universe_sections(id) ON DELETE CASCADE
);

-- Working papers attached to universe projects
CREATE TABLE IF NOT EXISTS project_attachments (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	content_type TEXT,
	size INTEGER NOT NULL DEFAULT 0,
	data BLOB,
	uploaded_by TEXT,
	uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES universe_projects(id) ON DELETE CASCADE,
	FOREIGN KEY (uploaded_by) REFERENCES users(id)
);

-- Annual plans
CREATE TABLE IF NOT EXISTS plans (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	objective TEXT,
	year INTEGER NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('Activo', 'Cerrado')) DEFAULT 'Activo',
	created_by TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (created_by) REFERENCES users(id)
);

-- Plan-projects are one-time copies of universe projects.
-- origin_* columns carry lineage only; they are not foreign keys so that
-- plan history survives deletion of the universe template.
CREATE TABLE IF NOT EXISTS plan_projects (
	id TEXT PRIMARY KEY,
	plan_id TEXT NOT NULL,
	origin_project_id TEXT NOT NULL,
	code TEXT NOT NULL,
	name TEXT NOT NULL,
	objective TEXT,
	audit_type TEXT,
	process TEXT,
	status TEXT NOT NULL CHECK(status IN ('Sin Iniciar', 'En Proceso', 'Completada')) DEFAULT 'Sin Iniciar',
	planned_start TEXT,
	planned_end TEXT,
	actual_start TEXT,
	actual_end TEXT,
	supervisor_id TEXT,
	field_auditor_id TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (plan_id) REFERENCES plans(id) ON DELETE CASCADE,
	FOREIGN KEY (supervisor_id) REFERENCES users(id),
	FOREIGN KEY (field_auditor_id) REFERENCES users(id),
	UNIQUE(plan_id, origin_project_id)
);

CREATE INDEX IF NOT EXISTS idx_plan_projects_origin ON plan_projects(origin_project_id);

CREATE TABLE IF NOT EXISTS plan_sections (
	id TEXT PRIMARY KEY,
	plan_project_id TEXT NOT NULL,
	origin_section_id TEXT,
	code TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	sort_order INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (plan_project_id) REFERENCES plan_projects(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS plan_subsections (
	id TEXT PRIMARY KEY,
	plan_section_id TEXT NOT NULL,
	origin_subsection_id TEXT,
	code TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	sort_order INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (plan_section_id) REFERENCES plan_sections(id) ON DELETE CASCADE
);

-- Findings (hallazgos)
CREATE TABLE IF NOT EXISTS findings (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	plan_id TEXT NOT NULL,
	plan_project_id TEXT NOT NULL,
	plan_subsection_id TEXT NOT NULL,
	condition TEXT,
	criterion TEXT,
	cause TEXT,
	effect TEXT,
	recommendation TEXT,
	probability INTEGER NOT NULL DEFAULT 1 CHECK(probability BETWEEN 1 AND 5),
	impact INTEGER NOT NULL DEFAULT 1 CHECK(impact BETWEEN 1 AND 5),
	risk_level TEXT NOT NULL,
	area TEXT,
	responsible_id TEXT,
	status TEXT NOT NULL CHECK(status IN ('Sin Asignar', 'Asignado', 'Vencida', 'Respuesta Recibida', 'Aceptada')) DEFAULT 'Sin Asignar',
	assignment_date TEXT,
	commitment_date TEXT,
	response_date TEXT,
	response TEXT,
	created_by TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (plan_id) REFERENCES plans(id),
	FOREIGN KEY (plan_project_id) REFERENCES plan_projects(id),
	FOREIGN KEY (plan_subsection_id) REFERENCES plan_subsections(id),
	FOREIGN KEY (responsible_id) REFERENCES users(id),
	FOREIGN KEY (created_by) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_findings_status ON findings(status);
CREATE INDEX IF NOT EXISTS idx_findings_plan_project ON findings(plan_project_id);
CREATE INDEX IF NOT EXISTS idx_findings_responsible ON findings(responsible_id);

-- Evidence attached to findings, tagged as finding evidence or response evidence
CREATE TABLE IF NOT EXISTS finding_attachments (
	id TEXT PRIMARY KEY,
	finding_id TEXT NOT NULL,
	kind TEXT NOT NULL CHECK(kind IN ('finding', 'response')) DEFAULT 'finding',
	filename TEXT NOT NULL,
	content_type TEXT,
	size INTEGER NOT NULL DEFAULT 0,
	data BLOB,
	uploaded_by TEXT,
	uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (finding_id) REFERENCES findings(id) ON DELETE CASCADE,
	FOREIGN KEY (uploaded_by) REFERENCES users(id)
);

-- Universe evaluation, one row per universe project
CREATE TABLE IF NOT EXISTS universe_evaluations (
	project_id TEXT PRIMARY KEY,
	risk_level INTEGER NOT NULL DEFAULT 1,
	months_since_audit INTEGER NOT NULL DEFAULT 0,
	findings_last_audit INTEGER NOT NULL DEFAULT 0,
	findings_resolved INTEGER NOT NULL DEFAULT 0,
	last_audit_status TEXT,
	last_audit_date TEXT,
	rotation_cycle INTEGER NOT NULL DEFAULT 12,
	criticality REAL NOT NULL DEFAULT 0,
	evaluated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES universe_projects(id) ON DELETE CASCADE
);

-- Append-only business audit trail
CREATE TABLE IF NOT EXISTS audit_log (
	id TEXT PRIMARY KEY,
	user_id TEXT,
	username TEXT,
	action TEXT NOT NULL,
	module TEXT NOT NULL,
	detail TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_audit_log_module ON audit_log(module);

-- Ad hoc role grants per plan-project
CREATE TABLE IF NOT EXISTS project_assignments (
	id TEXT PRIMARY KEY,
	plan_project_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	role TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (plan_project_id) REFERENCES plan_projects(id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES users(id),
	UNIQUE(plan_project_id, user_id, role)
);
`

// InitSchema brings the database up to date.
// A fresh database gets SchemaSQL directly and every migration is marked applied.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}
	if tableCount > 0 {
		return RunMigrations(database)
	}

	if _, err := database.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := ensureVersionTable(database); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to mark migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
