package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"sermon-subscription-billing/internal/config"
	"sermon-subscription-billing/internal/domain/model"
	"sermon-subscription-billing/internal/domain/ports/repository"
	pg "sermon-subscription-billing/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planRepo := pg.NewPlanRepo(pool)

	// If plans already exist, do nothing
	plans, err := planRepo.ListAll(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (%s, %d cents, active=%t)\n", p.Name, p.Interval, p.PriceCents, p.Active)
		}
		return
	}

	seed := []struct {
		Name     string
		Price    int64
		Interval model.BillingInterval
	}{
		{"Monthly", 1990, model.IntervalMonthly},
		{"Yearly", 19900, model.IntervalYearly},
	}

	for _, s := range seed {
		p, err := model.NewPlan(s.Name, s.Price, s.Interval)
		if err != nil {
			log.Fatalf("build plan %q: %v", s.Name, err)
		}
		if err := planRepo.Save(ctx, repository.NoTX, p); err != nil {
			log.Fatalf("save plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded: %s (id=%s, %s, %d cents)\n", p.Name, p.ID, p.Interval, p.PriceCents)
	}

	fmt.Println("Seeding complete.")
}
