package db

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultAdminUsername is the username of the seeded admin.
const DefaultAdminUsername = "admin"

// DefaultAdminPassword is the initial password of the seeded admin and demo users.
const DefaultAdminPassword = "admin123"

type seedUser struct {
	id, username, fullName, email, role string
}

var adminUser = seedUser{"USER-001", DefaultAdminUsername, "Administrador del Sistema", "admin@coopemedicos.com", "auditor"}

var demoUsers = []seedUser{
	{"USER-002", "supervisor1", "María González", "maria@coopemedicos.com", "supervisor"},
	{"USER-003", "auditor1", "Carlos Ramírez", "carlos@coopemedicos.com", "auditor_campo"},
	{"USER-004", "auditado1", "Ana Pérez", "ana@coopemedicos.com", "auditado"},
}

var seedCatalog = []struct {
	typ, value, description string
	order                   int
}{
	{"tipo_auditoria", "Auditoría Financiera", "Revisión de estados financieros", 1},
	{"tipo_auditoria", "Auditoría Operativa", "Revisión de procesos operativos", 2},
	{"tipo_auditoria", "Auditoría de Cumplimiento", "Verificación de cumplimiento normativo", 3},
	{"tipo_auditoria", "Auditoría de TI", "Revisión de tecnología de información", 4},
	{"tipo_auditoria", "Auditoría Especial", "Investigaciones especiales", 5},
	{"tipo_auditoria", "Seguimiento", "Seguimiento de hallazgos previos", 6},
	{"proceso", "Crédito", "Proceso de crédito", 1},
	{"proceso", "Captación", "Proceso de captación", 2},
	{"proceso", "Tesorería", "Proceso de tesorería", 3},
	{"proceso", "Contabilidad", "Proceso contable", 4},
	{"proceso", "Recursos Humanos", "Proceso de RRHH", 5},
	{"proceso", "Tecnología", "Proceso de TI", 6},
	{"proceso", "Cumplimiento", "Proceso de cumplimiento", 7},
	{"proceso", "Operaciones", "Proceso de operaciones", 8},
	{"area", "Gerencia General", "", 1},
	{"area", "Dirección Financiera", "", 2},
	{"area", "Dirección de Crédito", "", 3},
	{"area", "Dirección de TI", "", 4},
	{"area", "Dirección de RRHH", "", 5},
	{"area", "Dirección de Operaciones", "", 6},
	{"area", "Cumplimiento", "", 7},
	{"area", "Tesorería", "", 8},
}

var seedWeights = []struct {
	factor, label string
	weight        float64
	description   string
}{
	{"nivel_riesgo", "Nivel de Riesgo", 0.30, "Riesgo inherente del proceso (1-5)"},
	{"meses_ultima_auditoria", "Meses Última Auditoría", 0.20, "Meses desde la última auditoría"},
	{"hallazgos_ult_auditoria", "Hallazgos Últ. Auditoría", 0.20, "Cantidad de hallazgos encontrados"},
	{"hallazgos_solucionados", "Hallazgos Solucionados", 0.15, "Porcentaje de hallazgos resueltos"},
	{"ciclo_rotacion", "Ciclo de Rotación", 0.15, "Frecuencia de auditoría en meses"},
}

// SeedDefaults inserts the admin user, catalogs and default weights.
// Users are only seeded into an empty users table; demo users are added when demo is set.
// Safe to call on every start.
func SeedDefaults(database *sql.DB, demo bool) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	var userCount int
	if err := tx.QueryRow("SELECT COUNT(*) FROM users").Scan(&userCount); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if userCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		users := []seedUser{adminUser}
		if demo {
			users = append(users, demoUsers...)
		}
		for _, u := range users {
			if _, err := tx.Exec(
				"INSERT OR IGNORE INTO users (id, username, password_hash, full_name, email, role) VALUES (?, ?, ?, ?, ?, ?)",
				u.id, u.username, string(hash), u.fullName, u.email, u.role,
			); err != nil {
				return fmt.Errorf("seed users: %w", err)
			}
		}
	}

	for i, c := range seedCatalog {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO catalog_entries (id, type, value, description, display_order) VALUES (?, ?, ?, ?, ?)",
			fmt.Sprintf("CAT-%03d", i+1), c.typ, c.value, c.description, c.order,
		); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	for _, w := range seedWeights {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO evaluation_weights (factor, label, weight, description) VALUES (?, ?, ?, ?)",
			w.factor, w.label, w.weight, w.description,
		); err != nil {
			return fmt.Errorf("seed weights: %w", err)
		}
	}

	return tx.Commit()
}
