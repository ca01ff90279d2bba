package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmcampos/shopcart/internal/auth"
	"github.com/dmcampos/shopcart/internal/cart"
	"github.com/dmcampos/shopcart/internal/httpx"
	"github.com/dmcampos/shopcart/internal/item"
	"github.com/dmcampos/shopcart/internal/order"
	"github.com/dmcampos/shopcart/internal/user"
)

type routerDeps struct {
	users    *user.Service
	items    item.Repository
	carts    *cart.Service
	checkout *order.Service
	orders   order.Repository
	tokens   *auth.Tokens
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.POST("/signup", signupHandler(d.users))
	r.POST("/login", loginHandler(d.users))

	r.GET("/items", listItemsHandler(d.items))
	r.GET("/items/:id", getItemHandler(d.items))

	authed := r.Group("", httpx.RequireAuth(d.tokens))
	authed.POST("/items", createItemHandler(d.items))
	authed.DELETE("/items/:id", deleteItemHandler(d.items))
	authed.GET("/cart", getCartHandler(d.carts))
	authed.POST("/cart", addCartItemHandler(d.carts))
	authed.PUT("/cart", updateCartItemHandler(d.carts))
	authed.DELETE("/cart", clearCartHandler(d.carts))
	authed.POST("/checkout", checkoutHandler(d.checkout))
	authed.GET("/orders", listOrdersHandler(d.orders))

	return r
}
