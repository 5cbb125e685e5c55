package textutil

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Add  to\nCart":   "addtocart",
		"  SOLD OUT\t":    "soldout",
		"Notify Me When ": "notifymewhen",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestContainsAny(t *testing.T) {
	text := `<span> Add
	to Cart </span>`
	if !ContainsAny(text, []string{"sold out", "add to cart"}) {
		t.Error("expected add-to-cart phrase to match across whitespace")
	}
	if ContainsAny(text, []string{"sold out", "notify me"}) {
		t.Error("unexpected match")
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("  Arturo Fuente\n\tHemingway  ")
	if got != "Arturo Fuente Hemingway" {
		t.Errorf("got %q", got)
	}
}
