// Command seed fills a development database with demo content.
package main

import (
	"context"
	"flag"
	"log"

	"agora/internal/bootstrap"
	"agora/internal/config"
	"agora/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	comments := flag.Int("comments", 6, "Maximum comments per post")
	reactions := flag.Int("reactions", 15, "Maximum reactions per post")
	maxDays := flag.Int("days", 90, "Spread post timestamps over this many days")
	shouldClean := flag.Bool("clean", false, "Delete existing forum data first")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	fast := flag.Bool("fast", false, "Store the demo password unhashed (accounts cannot log in)")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = time based)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SeedBuiltIns: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer rt.Close(ctx)

	summary, err := seed.Seed(ctx, rt.DB, seed.Options{
		NumUsers:         *numUsers,
		NumPosts:         *numPosts,
		CommentsPerPost:  *comments,
		ReactionsPerPost: *reactions,
		MaxDays:          *maxDays,
		SkipBcrypt:       *fast,
		ShouldClean:      *shouldClean,
		DryRun:           *dryRun,
		RandomSeed:       *randomSeed,
	})
	if err != nil {
		log.Printf("Seeding failed: %v", err)
		return
	}

	log.Printf("Created %d users, %d posts, %d comments, %d reactions",
		summary.Users, summary.Posts, summary.Comments, summary.Reactions)
	if !*fast {
		log.Printf("All demo users have the password: %s", seed.DefaultPassword)
	}
}
