package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmcampos/shopcart/internal/cart"
	"github.com/dmcampos/shopcart/internal/httpx"
	"github.com/dmcampos/shopcart/internal/item"
	"github.com/dmcampos/shopcart/internal/order"
	"github.com/dmcampos/shopcart/internal/user"
)

// --- auth ---

func signupHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
			return
		}
		token, err := users.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, user.ErrAlreadyExist) {
				c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Signup failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"token": token})
	}
}

func loginHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
			return
		}
		token, err := users.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, user.ErrInvalidCredentials) {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// --- catalog ---

func listItemsHandler(items item.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := items.List(c.Request.Context(), item.Query{Q: c.Query("q")})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch items"})
			return
		}
		if out == nil {
			out = []item.Item{}
		}
		c.JSON(http.StatusOK, out)
	}
}

func getItemHandler(items item.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		it, err := items.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Item not found"})
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

func createItemHandler(items item.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req item.CreateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Price == "" || req.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "name and price are required, stock must be non-negative"})
			return
		}
		it := &item.Item{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Stock:       req.Stock,
		}
		if err := items.Create(c.Request.Context(), it); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create item"})
			return
		}
		c.JSON(http.StatusCreated, it)
	}
}

func deleteItemHandler(items item.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := items.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete item"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "Item not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- cart ---

type cartLineRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

func getCartHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := carts.Get(c.Request.Context(), c.GetString(httpx.UserIDKey))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get cart"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func addCartItemHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartLineRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ItemID == "" || req.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid item or quantity"})
			return
		}
		out, err := carts.AddItem(c.Request.Context(), c.GetString(httpx.UserIDKey), req.ItemID, req.Quantity)
		if err != nil {
			if errors.Is(err, cart.ErrInvalidLine) {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid item or quantity"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update cart"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func updateCartItemHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartLineRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ItemID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Missing itemId"})
			return
		}
		out, err := carts.UpdateItem(c.Request.Context(), c.GetString(httpx.UserIDKey), req.ItemID, req.Quantity)
		if err != nil {
			switch {
			case errors.Is(err, cart.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"message": "Cart not found"})
			case errors.Is(err, cart.ErrItemNotInCart):
				c.JSON(http.StatusNotFound, gin.H{"message": "Item not in cart"})
			case errors.Is(err, cart.ErrInvalidLine):
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid item or quantity"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to modify cart"})
			}
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func clearCartHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := carts.Clear(c.Request.Context(), c.GetString(httpx.UserIDKey)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// --- checkout & orders ---

func checkoutHandler(checkout *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ShippingAddress string `json:"shippingAddress"`
			PaymentMethod   string `json:"paymentMethod"`
		}
		// body is optional
		_ = c.ShouldBindJSON(&req)

		o, err := checkout.Checkout(c.Request.Context(), c.GetString(httpx.UserIDKey), order.CheckoutInput{
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
		})
		if err != nil {
			if errors.Is(err, order.ErrCartEmpty) {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Cart is empty"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Checkout failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Order placed", "order": o})
	}
}

func listOrdersHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := orders.ListByUser(c.Request.Context(), c.GetString(httpx.UserIDKey), 0, 0)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch orders"})
			return
		}
		if out == nil {
			out = []order.Order{}
		}
		c.JSON(http.StatusOK, out)
	}
}
