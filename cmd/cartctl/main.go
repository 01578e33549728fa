// Command cartctl drives the device cart stored in a local JSON file.
//
//	cartctl add -item m1 -name Burger -price 10 -restaurant r1 -restaurant-name Bistro -fee 3 -qty 2 -size Large=2.50 -topping Cheese=1
//	cartctl update <lineItemId> <quantity>
//	cartctl remove <lineItemId>
//	cartctl conflict <restaurantId>
//	cartctl show | count | clear
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fooddelivery/internal/cart"
	"fooddelivery/internal/config"
	"fooddelivery/internal/domain"
	"fooddelivery/internal/kvstore"
	"fooddelivery/internal/logging"
)

var errUsage = errors.New("usage: cartctl [-store file] [-key key] [-policy silent|confirm] add|update|remove|clear|show|count|conflict ...")

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger, err := logging.New("cartctl", cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), cfg, os.Args[1:], os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer, logger *zap.Logger) error {
	fs := flag.NewFlagSet("cartctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	storePath := fs.String("store", cfg.CartStoreFile, "Path of the JSON store file")
	key := fs.String("key", cfg.CartKey, "Store key of the cart")
	policyName := fs.String("policy", cfg.CartReplacePolicy, "Replace policy: silent or confirm")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() == 0 {
		return errUsage
	}
	policy, ok := cart.ParseReplacePolicy(*policyName)
	if !ok {
		return fmt.Errorf("%w: unknown policy %q", errUsage, *policyName)
	}

	e := cart.NewEngine(kvstore.NewFile(*storePath), cart.Options{Key: *key, Policy: policy, Logger: logger})
	e.Load(ctx)

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	var err error
	switch cmd {
	case "add":
		var line domain.CartLineItem
		line, err = add(ctx, e, rest)
		if err == nil || cart.IsPersistWarning(err) {
			fmt.Fprintf(out, "added %s\n", line.ID)
		}
	case "update":
		if len(rest) != 2 {
			return errUsage
		}
		qty, convErr := strconv.Atoi(rest[1])
		if convErr != nil {
			return fmt.Errorf("%w: quantity %q", errUsage, rest[1])
		}
		err = e.UpdateQuantity(ctx, rest[0], qty)
	case "remove":
		if len(rest) != 1 {
			return errUsage
		}
		err = e.RemoveItem(ctx, rest[0])
	case "clear":
		err = e.Clear(ctx)
	case "show":
		return writeJSON(out, e.Snapshot())
	case "count":
		fmt.Fprintln(out, e.ItemCount())
		return nil
	case "conflict":
		if len(rest) != 1 {
			return errUsage
		}
		fmt.Fprintln(out, e.IsFromDifferentRestaurant(rest[0]))
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	if cart.IsPersistWarning(err) {
		logger.Warn("cart changed but not saved", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	return writeJSON(out, e.Snapshot())
}

func add(ctx context.Context, e *cart.Engine, args []string) (domain.CartLineItem, error) {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		item     domain.MenuItem
		info     domain.RestaurantInfo
		custom   domain.Customizations
		price    string
		image    string
		fee      string
		qty      int
		confirm  bool
		parseErr error
	)
	fs.StringVar(&item.ID, "item", "", "Menu item id")
	fs.StringVar(&item.Name, "name", "", "Menu item name")
	fs.StringVar(&image, "image", "", "Image URL")
	fs.StringVar(&price, "price", "", "Base price")
	fs.IntVar(&qty, "qty", 1, "Quantity")
	fs.StringVar(&info.ID, "restaurant", "", "Restaurant id")
	fs.StringVar(&info.Name, "restaurant-name", "", "Restaurant name")
	fs.StringVar(&fee, "fee", "", "Delivery fee; omitted uses the default fee")
	fs.StringVar(&custom.SpecialInstructions, "note", "", "Special instructions")
	fs.BoolVar(&confirm, "confirm", false, "Confirm replacing a cart from another restaurant")
	fs.Func("size", "Size as name=priceModifier", func(v string) error {
		name, amount, err := namedAmount(v)
		if err != nil {
			return err
		}
		custom.Size = &domain.SizeChoice{Name: name, PriceModifier: amount}
		return nil
	})
	fs.Func("topping", "Topping as name=price; repeatable", func(v string) error {
		name, amount, err := namedAmount(v)
		if err != nil {
			return err
		}
		custom.Toppings = append(custom.Toppings, domain.ToppingChoice{Name: name, Price: amount})
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return domain.CartLineItem{}, fmt.Errorf("%w: %v", errUsage, err)
	}

	if item.BasePrice, parseErr = decimal.NewFromString(price); parseErr != nil {
		return domain.CartLineItem{}, fmt.Errorf("%w: price %q", errUsage, price)
	}
	if fee != "" {
		d, err := decimal.NewFromString(fee)
		if err != nil {
			return domain.CartLineItem{}, fmt.Errorf("%w: fee %q", errUsage, fee)
		}
		info.DeliveryFee = &d
	}
	if image != "" {
		item.Images = []string{image}
	}
	item.RestaurantID = info.ID
	item.Available = true

	return e.AddItem(ctx, cart.AddItemInput{
		MenuItem:       item,
		Customizations: custom,
		Quantity:       qty,
		Restaurant:     info,
		ConfirmReplace: confirm,
	})
}

func namedAmount(v string) (string, decimal.Decimal, error) {
	name, amount, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return "", decimal.Zero, fmt.Errorf("expected name=amount, got %q", v)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("amount in %q: %w", v, err)
	}
	return strings.TrimSpace(name), d, nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
