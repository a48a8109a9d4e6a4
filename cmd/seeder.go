package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		const headChurchCode = "TEST"

		if clearData {
			for _, table := range []string{"members", "church_leads", "churches", "access_grants", "users", "hierarchy_levels"} {
				if err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE head_church_code = ?", table), headChurchCode).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data for head church:", headChurchCode)
		}

		levels := []struct {
			Code    string
			Name    string
			LevelNo int
		}{
			{"CHU", "Head Church", 1},
			{"REG", "Region", 2},
			{"ZON", "Zone", 3},
			{"ARE", "Area", 4},
			{"BRN", "Branch", 5},
		}

		for _, l := range levels {
			var exists int
			row := db.Raw("SELECT 1 FROM hierarchy_levels WHERE head_church_code = ? AND code = ?", headChurchCode, l.Code).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO hierarchy_levels (head_church_code, code, name, level_no, is_active, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, true, 'SEED', now(), now())",
				headChurchCode, l.Code, l.Name, l.LevelNo,
			).Error; err != nil {
				log.Fatalf("failed to insert level %s: %v", l.Code, err)
			}
			fmt.Printf("Seeded hierarchy level: %s (%d)\n", l.Code, l.LevelNo)
		}

		var exists int
		row := db.Raw("SELECT 1 FROM churches WHERE head_church_code = ? AND code = ?", headChurchCode, headChurchCode).Row()
		if err := row.Scan(&exists); err != nil {
			if err := db.Exec(
				"INSERT INTO churches (code, name, level_code, head_church_code, status, is_active, created_by, created_at, updated_at) VALUES (?, 'Test Head Church', 'CHU', ?, 'APR', true, 'SEED', now(), now())",
				headChurchCode, headChurchCode,
			).Error; err != nil {
				log.Fatalf("failed to insert head church: %v", err)
			}
			fmt.Println("Seeded head church:", headChurchCode)
		}

		adminEmail := "admin@lifegate.test"
		adminUsercode := "ADMIN01"
		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

		row = db.Raw("SELECT 1 FROM users WHERE email = ?", adminEmail).Row()
		if err := row.Scan(&exists); err != nil {
			if err := db.Exec(
				"INSERT INTO users (usercode, email, name, password_hash, head_church_code, is_active, created_at, updated_at) VALUES (?, ?, 'Administrator', ?, ?, true, now(), now())",
				adminUsercode, adminEmail, string(hash), headChurchCode,
			).Error; err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			fmt.Println("Seeded admin user:", adminEmail)
		}

		// one grant per access type, at the top level, on the wildcard module
		accessTypes := []string{"CR", "VW", "ED", "AR", "RD", "UP"}
		for _, at := range accessTypes {
			row := db.Raw(
				"SELECT 1 FROM access_grants WHERE usercode = ? AND head_church_code = ? AND access_type = ?",
				adminUsercode, headChurchCode, at,
			).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO access_grants (usercode, head_church_code, role_code, level_code, level_no, module_code, submodule_code, access_type, created_at) VALUES (?, ?, 'SAD', 'CHU', 1, 'ALLM', 'ALLS', ?, now())",
				adminUsercode, headChurchCode, at,
			).Error; err != nil {
				log.Fatalf("failed to grant %s to admin user: %v", at, err)
			}
		}

		fmt.Println("Granted super admin access to:", adminEmail)
	},
}
