// Package catalog holds the static product category table.
//
// The table is built once at init and never mutated. Accessors hand out
// copies so callers cannot reach into it.
package catalog

import (
	"fmt"
	"strings"
)

// Category describes the choices offered for one product category.
type Category struct {
	Name     string   `json:"name"`
	Features []string `json:"features"`
	Types    []string `json:"types"`
	UseCases []string `json:"use_cases"`
}

// HasFeature reports whether feature belongs to the category.
func (c Category) HasFeature(feature string) bool {
	for _, f := range c.Features {
		if f == feature {
			return true
		}
	}
	return false
}

func (c Category) clone() Category {
	return Category{
		Name:     c.Name,
		Features: append([]string(nil), c.Features...),
		Types:    append([]string(nil), c.Types...),
		UseCases: append([]string(nil), c.UseCases...),
	}
}

// Category names.
const (
	Cameras          = "Cameras"
	Laptops          = "Laptops"
	Smartphones      = "Smartphones"
	SmartHomeDevices = "Smart Home Devices"
)

// order fixes the listing order; map iteration order is random.
var order = []string{Cameras, Laptops, Smartphones, SmartHomeDevices}

var categories = map[string]Category{
	Cameras: {
		Name: Cameras,
		Features: []string{
			"Low Light Performance",
			"4K Video",
			"Image Stabilization",
			"Weather Sealing",
			"Compact Size",
			"WiFi Connectivity",
			"Touch Screen",
		},
		Types: []string{
			"Mirrorless",
			"DSLR",
			"Point and Shoot",
			"Medium Format",
		},
		UseCases: []string{
			"Professional Photography",
			"Vlogging",
			"Travel Photography",
			"Sports Photography",
			"Wildlife Photography",
		},
	},
	Laptops: {
		Name: Laptops,
		Features: []string{
			"Long Battery Life",
			"Dedicated Graphics",
			"Touch Screen",
			"Backlit Keyboard",
			"Fingerprint Reader",
			"Thunderbolt Ports",
			"5G Connectivity",
		},
		Types: []string{
			"Ultrabook",
			"Gaming Laptop",
			"Business Laptop",
			"2-in-1 Convertible",
			"Budget Laptop",
		},
		UseCases: []string{
			"Gaming",
			"Content Creation",
			"Business",
			"Student",
			"Programming",
		},
	},
	Smartphones: {
		Name: Smartphones,
		Features: []string{
			"5G Support",
			"Wireless Charging",
			"Water Resistance",
			"Face Recognition",
			"Multiple Cameras",
			"Fast Charging",
			"NFC",
		},
		Types: []string{
			"Flagship",
			"Mid-range",
			"Budget",
			"Gaming Phone",
			"Compact",
		},
		UseCases: []string{
			"Photography",
			"Gaming",
			"Business",
			"Basic Use",
			"Content Creation",
		},
	},
	SmartHomeDevices: {
		Name: SmartHomeDevices,
		Features: []string{
			"Voice Control",
			"Mobile App Control",
			"Energy Monitoring",
			"Motion Detection",
			"Smart Scheduling",
			"Multi-user Support",
			"Integration Capabilities",
		},
		Types: []string{
			"Smart Speakers",
			"Security Cameras",
			"Smart Lights",
			"Smart Thermostats",
			"Smart Displays",
		},
		UseCases: []string{
			"Home Security",
			"Energy Management",
			"Entertainment",
			"Home Automation",
			"Family Organization",
		},
	},
}

// Names returns the category names in display order.
func Names() []string {
	return append([]string(nil), order...)
}

// All returns every category in display order.
func All() []Category {
	result := make([]Category, 0, len(order))
	for _, name := range order {
		result = append(result, categories[name].clone())
	}
	return result
}

// Lookup returns the category with the given name.
func Lookup(name string) (Category, bool) {
	c, ok := categories[name]
	if !ok {
		return Category{}, false
	}
	return c.clone(), true
}

// Resolve is Lookup with case-insensitive matching, for CLI and HTTP input.
func Resolve(name string) (Category, error) {
	if c, ok := Lookup(name); ok {
		return c, nil
	}
	for _, n := range order {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return categories[n].clone(), nil
		}
	}
	return Category{}, fmt.Errorf("unknown category: %q", name)
}

// Known reports whether name is an exact category name.
func Known(name string) bool {
	_, ok := categories[name]
	return ok
}
