package commands

import (
	"context"
	"fmt"

	"atelier/pkg/catalog"
)

func parseKind(kind string) (catalog.Kind, error) {
	k := catalog.Kind(kind)
	if kind != "" && !k.Valid() {
		return "", fmt.Errorf("unknown kind %q, want original or digital", kind)
	}
	return k, nil
}

// ListCatalog prints the artworks of kind, every artwork when kind is empty.
// Featured pieces are starred.
func ListCatalog(ctx context.Context, env *Env, kind string) error {
	k, err := parseKind(kind)
	if err != nil {
		return err
	}
	store := catalog.NewStore(env.Catalog)
	if err := store.Load(ctx); err != nil {
		return err
	}

	artworks := store.All()
	if k != "" {
		artworks = store.ByKind(k)
	}
	env.printf("%s\n", headerStyle.Render(fmt.Sprintf("%-10s %-32s %-9s %10s %s", "ID", "Title", "Kind", "Price", "Stock")))
	for _, a := range artworks {
		title := a.Title
		if a.Featured {
			title = "* " + title
		}
		stock := fmt.Sprint(a.Stock)
		if a.Unlimited() {
			stock = "-"
		}
		env.printf("%-10s %-32s %-9s %10s %s\n", a.ID, title, a.Kind, money(a.Price, a.Currency), stock)
	}
	return nil
}

func money(amount float64, currency string) string {
	return fmt.Sprintf("%.2f %s", amount, currency)
}

// CartAdd puts qty of artwork id into the persisted cart
func CartAdd(ctx context.Context, env *Env, id string, qty int) error {
	store := catalog.NewStore(env.Catalog)
	if err := store.Load(ctx); err != nil {
		return err
	}
	a, ok := store.ByID(id)
	if !ok {
		return fmt.Errorf("artwork %s is not in the catalog", id)
	}
	if err := env.Cart.Add(a, qty); err != nil {
		return fmt.Errorf("adding %q: %w", a.Title, err)
	}
	env.printf("Added %d x %s\n", qty, a.Title)
	return nil
}

func CartRemove(env *Env, id string) error {
	if err := env.Cart.Remove(id); err != nil {
		return err
	}
	env.printf("Removed %s\n", id)
	return nil
}

func CartShow(env *Env) {
	items := env.Cart.Items()
	if len(items) == 0 {
		env.printf("The cart is empty\n")
		return
	}
	currency := ""
	for _, item := range items {
		currency = item.Artwork.Currency
		env.printf("%3d x %-32s %14s\n", item.Quantity, item.Artwork.Title, money(item.Subtotal(), currency))
	}
	env.printf("%d piece(s), total %s\n", env.Cart.Count(), money(env.Cart.Total(), currency))
}
