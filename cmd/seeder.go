package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/eoffice/office-management/internal/auth"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the bootstrap role and admin user",
	Long:  `Seed the user_admin role, its MANAGE_USER grant and an initial admin account. Safe to run repeatedly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		now := time.Now()

		var roleID int64
		row := db.Raw("SELECT id FROM roles WHERE name = ?", auth.BootstrapRoleName).Row()
		if err := row.Scan(&roleID); err != nil {
			if err := db.Exec("INSERT INTO roles (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)", auth.BootstrapRoleName, "Bootstrap role for user administration", now, now).Error; err != nil {
				log.Fatalf("failed to insert bootstrap role: %v", err)
			}
			if err := db.Raw("SELECT id FROM roles WHERE name = ?", auth.BootstrapRoleName).Row().Scan(&roleID); err != nil {
				log.Fatalf("failed to lookup bootstrap role id: %v", err)
			}
			fmt.Println("Seeded bootstrap role:", auth.BootstrapRoleName)
		}

		var exists int
		row = db.Raw("SELECT 1 FROM role_permissions WHERE role_id = ? AND permission = ?", roleID, string(auth.PermManageUser)).Row()
		if err := row.Scan(&exists); err != nil {
			if err := db.Exec("INSERT INTO role_permissions (role_id, permission) VALUES (?, ?)", roleID, string(auth.PermManageUser)).Error; err != nil {
				log.Fatalf("failed to grant permission to bootstrap role: %v", err)
			}
			fmt.Println("Granted", string(auth.PermManageUser), "to", auth.BootstrapRoleName)
		}

		adminUsername := "admin"
		row = db.Raw("SELECT 1 FROM users WHERE username = ?", adminUsername).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("admin user already exists; nothing to do")
			return
		}

		password := "admin"
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}

		if err := db.Exec(
			"INSERT INTO users (username, first_name, last_name, email, password_hash, role_id, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			adminUsername, "Admin", "User", "admin@eoffice.local", string(hash), roleID, true, now, now,
		).Error; err != nil {
			log.Fatalf("failed to insert admin user: %v", err)
		}

		fmt.Println("Seeded admin user:", adminUsername)
	},
}
