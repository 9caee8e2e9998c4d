// Package main shows the state store used as a library, without the HTTP
// gateway: in-memory adapters, seeded defaults, a cart, and one checkout.
//
// To run this example:
//
//	cd example
//	go run .
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gtera/thiwa/app/models"
	"github.com/gtera/thiwa/internal/localstore"
	"github.com/gtera/thiwa/internal/remote"
	"github.com/gtera/thiwa/internal/shop"
)

func main() {
	store := shop.New(remote.NewMemoryDriver(), localstore.NewMemStore())
	if err := store.Start(context.Background()); err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	// The empty memory driver was seeded with the default catalogue on Start.
	products := store.Products()
	fmt.Printf("catalogue holds %d products\n", len(products))

	if err := store.AddToCart(products[0], models.SizeM, nil); err != nil {
		log.Fatal(err)
	}
	if err := store.AddToCart(products[1], models.SizeL, nil); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("cart total: LKR %d\n", store.CartTotal())

	order, err := store.PlaceOrder(context.Background(), models.CustomerInfo{
		Name:    "Nimal Perera",
		Phone:   "+94771234567",
		Address: "12 Galle Road, Colombo",
	}, models.PaymentBankTransfer)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("placed order %s with %d items, status %s\n",
		order.ID, len(order.Items), order.Status)
	fmt.Printf("cart is now empty: %v\n", len(store.Cart()) == 0)
}
