// Command admin manages user roles outside the HTTP API.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"

	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  admin set-role <email> <role>   - Assign a role (" + roleList() + ")")
	fmt.Println("  admin list <role>               - List users holding a role")
	os.Exit(1)
}

func roleList() string {
	roles := models.AllRoles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	switch os.Args[1] {
	case "set-role":
		if len(os.Args) < 4 {
			usage()
		}
		setRole(ctx, cfg, db, os.Args[2], os.Args[3])
	case "list":
		if len(os.Args) < 3 {
			usage()
		}
		listRole(ctx, db, os.Args[2])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
	}
}

func setRole(ctx context.Context, cfg *config.Config, db *gorm.DB, email, role string) {
	// Evict the cached profile so the running server sees the new role.
	var store *cache.Store
	if cfg.RedisURL != "" {
		if client, err := cache.Connect(ctx, cfg.RedisURL); err == nil {
			defer func() { _ = client.Close() }()
			store = cache.New(client)
		}
	}

	users := repository.NewUserRepository(db, store)
	admin := service.NewAdminService(users, repository.NewAdminLogRepository(db), store)
	user, err := admin.SetRoleByEmail(ctx, email, role)
	if err != nil {
		log.Fatalf("Failed to set role: %v", err)
	}
	fmt.Printf("%s (ID: %d) is now %s\n", user.Username, user.ID, user.Role)
}

func listRole(ctx context.Context, db *gorm.DB, role string) {
	r, ok := models.ParseRole(role)
	if !ok {
		log.Fatalf("Unknown role %q (want one of %s)", role, roleList())
	}
	var users []models.User
	if err := db.WithContext(ctx).Where("role = ?", r).Order("id").Find(&users).Error; err != nil {
		log.Fatalf("Failed to fetch users: %v", err)
	}
	if len(users) == 0 {
		fmt.Printf("No %s users found\n", r)
		return
	}
	for _, u := range users {
		fmt.Printf("  %d\t%s\t%s\n", u.ID, u.Username, u.Email)
	}
}
