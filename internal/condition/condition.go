package condition

import "strings"

// Category is the main weather group reported by OpenWeatherMap
// (the "main" field of the first weather entry).
type Category string

const (
	CategoryClear   Category = "Clear"
	CategoryClouds  Category = "Clouds"
	CategoryRain    Category = "Rain"
	CategoryDrizzle Category = "Drizzle"
	CategoryMist    Category = "Mist"
)

// Asset identifies an icon shipped with the widget.
type Asset string

const (
	AssetClear   Asset = "clear"
	AssetClouds  Asset = "clouds"
	AssetRain    Asset = "rain"
	AssetDrizzle Asset = "drizzle"
	AssetMist    Asset = "mist"
)

// Icon maps a category to its icon. Every category has one; anything
// unrecognised falls back to the clear-sky icon.
func Icon(c Category) Asset {
	switch c {
	case CategoryClouds:
		return AssetClouds
	case CategoryClear:
		return AssetClear
	case CategoryRain:
		return AssetRain
	case CategoryDrizzle:
		return AssetDrizzle
	case CategoryMist:
		return AssetMist
	default:
		return AssetClear
	}
}

// Path returns the URL the icon is served from.
func (a Asset) Path() string {
	return "/static/icons/" + string(a) + ".svg"
}

// Label returns a human readable name for the asset, used as alt text.
func (a Asset) Label() string {
	if a == "" {
		return ""
	}
	return strings.ToUpper(string(a[:1])) + string(a[1:])
}
