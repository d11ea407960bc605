package query

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestBuildLaptopScenario(t *testing.T) {
	q, err := Build("Laptops", 1000, []string{"Long Battery Life"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Looking for a laptops under $1000 with Long Battery Life"
	if q.String() != want {
		t.Errorf("expected %q, got %q", want, q)
	}
}

func TestBuildNoFeaturesNoText(t *testing.T) {
	q, err := Build("Cameras", 500, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q != "Looking for a cameras under $500" {
		t.Errorf("unexpected query: %q", q)
	}
}

func TestBuildWithFreeText(t *testing.T) {
	q, err := Build("Smartphones", 799.99, []string{"NFC", "5G Support"}, "small screen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Looking for a smartphones under $799.99 with NFC, 5G Support. Additional requirements: small screen"
	if q.String() != want {
		t.Errorf("expected %q, got %q", want, q)
	}
}

func TestBuildDeterministic(t *testing.T) {
	features := []string{"Voice Control", "Motion Detection"}
	first, err := Build("Smart Home Devices", 250, features, "works with HomeKit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _ := Build("Smart Home Devices", 250, features, "works with HomeKit")
		if again != first {
			t.Fatalf("build %d differed: %q vs %q", i, again, first)
		}
	}
}

func TestBuildKeepsFeatureOrder(t *testing.T) {
	features := []string{"Touch Screen", "Backlit Keyboard", "Dedicated Graphics"}
	q, err := Build("Laptops", 1500, features, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := q.String()
	if !strings.Contains(s, "1500") {
		t.Errorf("query missing budget: %q", s)
	}
	last := -1
	for _, f := range features {
		idx := strings.Index(s, f)
		if idx < 0 {
			t.Fatalf("query missing feature %q: %q", f, s)
		}
		if idx <= last {
			t.Errorf("feature %q out of selection order in %q", f, s)
		}
		last = idx
	}
}

func TestBuildUnknownCategory(t *testing.T) {
	_, err := Build("Toasters", 100, nil, "")
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestBuildInvalidBudget(t *testing.T) {
	for _, budget := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := Build("Laptops", budget, nil, ""); !errors.Is(err, ErrInvalidBudget) {
			t.Errorf("budget %v: expected ErrInvalidBudget, got %v", budget, err)
		}
	}
}

func TestBuildZeroBudget(t *testing.T) {
	q, err := Build("Laptops", 0, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q != "Looking for a laptops under $0" {
		t.Errorf("unexpected query: %q", q)
	}
}
