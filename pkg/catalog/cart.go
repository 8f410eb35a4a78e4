package catalog

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// CartKey is the local storage key of the persisted cart
const CartKey = "cart.items"

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrOutOfStock      = errors.New("not enough stock")
	ErrNotInCart       = errors.New("artwork is not in the cart")
)

// Storage is the subset of local storage the cart persists through
type Storage interface {
	GetJSON(key string, v any) error
	SetJSON(key string, v any) error
}

type CartItem struct {
	Artwork  Artwork `json:"artwork"`
	Quantity int     `json:"quantity"`
}

// Subtotal is price times quantity
func (i CartItem) Subtotal() float64 {
	return i.Artwork.Price * float64(i.Quantity)
}

type Cart struct {
	mtx     sync.Mutex
	items   []CartItem
	storage Storage
	log     *zap.Logger
}

// NewCart restores the persisted cart when storage is given. A missing or
// unreadable copy starts an empty cart.
func NewCart(storage Storage, log *zap.Logger) *Cart {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Cart{storage: storage, log: log}
	if storage != nil {
		var items []CartItem
		if err := storage.GetJSON(CartKey, &items); err != nil {
			log.Debug("no persisted cart", zap.Error(err))
		} else {
			c.items = items
		}
	}
	return c
}

// Add puts qty more of a into the cart. Originals are capped by stock.
func (c *Cart) Add(a Artwork, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	c.mtx.Lock()
	defer c.mtx.Unlock()

	i := c.indexOf(a.ID)
	current := 0
	if i >= 0 {
		current = c.items[i].Quantity
	}
	if err := checkStock(a, current+qty); err != nil {
		return err
	}
	if i >= 0 {
		c.items[i].Artwork = a
		c.items[i].Quantity = current + qty
	} else {
		c.items = append(c.items, CartItem{Artwork: a, Quantity: qty})
	}
	c.persist()
	return nil
}

// SetQuantity replaces the quantity of an item; zero or less removes it
func (c *Cart) SetQuantity(id string, qty int) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return ErrNotInCart
	}
	if qty <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		c.persist()
		return nil
	}
	if err := checkStock(c.items[i].Artwork, qty); err != nil {
		return err
	}
	c.items[i].Quantity = qty
	c.persist()
	return nil
}

func (c *Cart) Remove(id string) error {
	return c.SetQuantity(id, 0)
}

func (c *Cart) Clear() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.items = nil
	c.persist()
}

func (c *Cart) Items() []CartItem {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return append([]CartItem(nil), c.items...)
}

// Count is the number of pieces, not of lines
func (c *Cart) Count() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) Total() float64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	total := 0.0
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

func (c *Cart) indexOf(id string) int {
	for i, item := range c.items {
		if item.Artwork.ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with mtx held
func (c *Cart) persist() {
	if c.storage == nil {
		return
	}
	items := c.items
	if items == nil {
		items = []CartItem{}
	}
	if err := c.storage.SetJSON(CartKey, items); err != nil {
		c.log.Warn("saving cart", zap.Error(err))
	}
}

func checkStock(a Artwork, qty int) error {
	if a.Unlimited() || qty <= a.Stock {
		return nil
	}
	return fmt.Errorf("%w: %q has %d left", ErrOutOfStock, a.Title, a.Stock)
}
