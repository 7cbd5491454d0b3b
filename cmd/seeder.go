package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed a superadmin account and a few catalog products for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"payment_logs", "orders", "products", "admin_users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("superadmin123"), cfg.Security.BCryptCost)

		adminEmail := "superadmin@sobatmedia.id"
		var exists int
		row := db.Raw("SELECT 1 FROM admin_users WHERE email = ?", adminEmail).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("superadmin already exists:", adminEmail)
		} else {
			if err := db.Exec(
				"INSERT INTO admin_users (id, email, password_hash, name, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, 'superadmin', true, now(), now())",
				uuid.NewString(), adminEmail, string(hash), "Super Admin").Error; err != nil {
				log.Fatalf("failed to insert superadmin: %v", err)
			}
			fmt.Println("Seeded superadmin:", adminEmail)
		}

		products := []struct {
			Name        string
			Platform    string
			SubPlatform string
			Price       int64
		}{
			{"1000 Followers Instagram", "instagram", "followers", 25000},
			{"5000 Views TikTok", "tiktok", "views", 15000},
			{"1000 Subscribers YouTube", "youtube", "subscribers", 150000},
			{"500 Likes Instagram", "instagram", "likes", 10000},
		}

		for _, p := range products {
			row := db.Raw("SELECT 1 FROM products WHERE name = ?", p.Name).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO products (id, name, platform, sub_platform, price, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, true, now(), now())",
				uuid.NewString(), p.Name, p.Platform, p.SubPlatform, p.Price).Error; err != nil {
				log.Fatalf("failed to insert product %s: %v", p.Name, err)
			}
			fmt.Println("Seeded product:", p.Name)
		}
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
}
