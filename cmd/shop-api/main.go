package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmcampos/shopcart/internal/auth"
	"github.com/dmcampos/shopcart/internal/cart"
	"github.com/dmcampos/shopcart/internal/config"
	"github.com/dmcampos/shopcart/internal/item"
	"github.com/dmcampos/shopcart/internal/order"
	"github.com/dmcampos/shopcart/internal/user"
)

func main() {
	cfg := config.Load()

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[main] postgres: %v", err)
	}
	defer pool.Close()

	tokens := auth.NewTokens(cfg.JWTSecret, 24*time.Hour)
	items := item.NewPGRepo(pool)
	cartRepo := cart.NewPGRepo(pool)

	r := newRouter(routerDeps{
		users:    user.NewService(user.NewPGRepo(pool), tokens),
		items:    items,
		carts:    cart.NewService(cartRepo, items),
		checkout: order.NewService(cartRepo, order.NewPGRepo(pool)),
		orders:   order.NewPGRepo(pool),
		tokens:   tokens,
	})

	log.Printf("[main] shop-api listening on %s", cfg.HTTPAddr)
	log.Fatal(r.Run(cfg.HTTPAddr))
}
