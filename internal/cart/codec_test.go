package cart

import (
	"errors"
	"strings"
	"testing"

	"fooddelivery/internal/domain"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := Add(Empty(), NewLineItem("a", burger(), largeWithCheese(), 2, bistro.ID), bistro)
	c = Add(c, NewLineItem("b", domain.MenuItem{ID: "m2", Name: "Fries", BasePrice: dec("5")}, domain.Customizations{
		SpecialInstructions: "extra salt",
		Extra:               map[string]interface{}{"sauce": "ketchup"},
	}, 1, bistro.ID), bistro)

	raw, err := Encode(c)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, field := range []string{`"items"`, `"restaurantId"`, `"restaurantName"`, `"subtotal"`, `"deliveryFee"`, `"tax"`, `"total"`} {
		if !strings.Contains(raw, field) {
			t.Fatalf("encoded cart lacks %s: %s", field, raw)
		}
	}

	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	again, err := Encode(got)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if again != raw {
		t.Fatalf("round trip changed cart:\n%s\n%s", raw, again)
	}
	if got.BoundRestaurant() != "r1" || len(got.Items) != 2 || got.Items[1].Customizations.Extra["sauce"] != "ketchup" {
		t.Fatalf("unexpected restored cart %+v", got)
	}
	assertMoney(t, "total", got.Total, c.Total.String())
	assertMoney(t, "unit", got.Items[0].UnitPrice, "13.5")
}

func TestEncodeEmptyCartKeepsNullBinding(t *testing.T) {
	raw, err := Encode(domain.Cart{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(raw, `"items":[]`) || !strings.Contains(raw, `"restaurantId":null`) {
		t.Fatalf("unexpected empty encoding %s", raw)
	}
}

func TestDecodeRecomputesTotals(t *testing.T) {
	raw := `{"items":[{"id":"a","menuItemId":"m1","name":"Burger","basePrice":"10","quantity":2,"unitPrice":"10","totalPrice":"20"}],
"restaurantId":"r1","restaurantName":"Bistro","subtotal":"999","deliveryFee":"3","tax":"0","total":"0"}`
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	assertMoney(t, "subtotal", got.Subtotal, "20")
	assertMoney(t, "tax", got.Tax, "1.6")
	assertMoney(t, "total", got.Total, "24.6")
	if got.Items[0].RestaurantID != "r1" {
		t.Fatalf("expected legacy item adopted by binding, got %q", got.Items[0].RestaurantID)
	}
}

func TestDecodeAcceptsNumericMoney(t *testing.T) {
	raw := `{"items":[{"id":"a","menuItemId":"m1","quantity":1,"totalPrice":12.5}],"restaurantId":"r1","restaurantName":"B","deliveryFee":2.99}`
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	assertMoney(t, "subtotal", got.Subtotal, "12.5")
	assertMoney(t, "fee", got.DeliveryFee, "2.99")
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"items":`,
		"unbound items":   `{"items":[{"id":"a","quantity":1,"totalPrice":"1"}]}`,
		"zero quantity":   `{"items":[{"id":"a","quantity":0,"totalPrice":"1"}],"restaurantId":"r1"}`,
		"missing id":      `{"items":[{"quantity":1,"totalPrice":"1"}],"restaurantId":"r1"}`,
		"duplicate id":    `{"items":[{"id":"a","quantity":1},{"id":"a","quantity":1}],"restaurantId":"r1"}`,
		"foreign item":    `{"items":[{"id":"a","restaurantId":"r2","quantity":1}],"restaurantId":"r1"}`,
		"empty but bound": `{"items":[],"restaurantId":"r1"}`,
	}
	for name, raw := range cases {
		if _, err := Decode(raw); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: expected ErrMalformed, got %v", name, err)
		}
	}
}
