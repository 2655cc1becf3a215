// Command main provides admin management utilities for Inkwell.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  admin promote <email>      - Promote user to admin")
		fmt.Println("  admin demote <email>       - Demote user to regular user")
		fmt.Println("  admin list-admins          - List all admins")
		fmt.Println("  admin stats                - Show user and post counts")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch os.Args[1] {
	case "promote":
		requireEmailArg()
		setRole(db, os.Args[2], models.RoleAdmin)

	case "demote":
		requireEmailArg()
		setRole(db, os.Args[2], models.RoleUser)

	case "list-admins":
		listAdmins(db)

	case "stats":
		showStats(db)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func requireEmailArg() {
	if len(os.Args) < 3 {
		fmt.Println("An email address is required")
		os.Exit(1)
	}
}

func setRole(db *gorm.DB, email string, role models.Role) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User %s not found\n", email)
			os.Exit(1)
		}
		log.Fatalf("Database error: %v", err)
	}

	if user.Role == role {
		fmt.Printf("%s already has role %s\n", email, role)
		return
	}

	user.Role = role
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}
	fmt.Printf("%s is now %s\n", email, role)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
		log.Fatalf("Database error: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found")
		return
	}
	for _, admin := range admins {
		fmt.Printf("%d\t%s\t%s\n", admin.ID, admin.Email, admin.FullName())
	}
}

func showStats(db *gorm.DB) {
	var userCount, postCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		log.Fatalf("Database error: %v", err)
	}
	if err := db.Model(&models.Post{}).Count(&postCount).Error; err != nil {
		log.Fatalf("Database error: %v", err)
	}
	fmt.Printf("users: %d\nposts: %d\n", userCount, postCount)
}
