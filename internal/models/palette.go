package models

// ScopeIcon names the glyph a client renders for a scope.
type ScopeIcon string

const (
	IconWallet   ScopeIcon = "wallet"
	IconFood     ScopeIcon = "utensils"
	IconCar      ScopeIcon = "car"
	IconFilm     ScopeIcon = "film"
	IconShopping ScopeIcon = "shopping-bag"
	IconHome     ScopeIcon = "home"
	IconHealth   ScopeIcon = "heart"
	IconBook     ScopeIcon = "book"
	IconTravel   ScopeIcon = "plane"
	IconCoffee   ScopeIcon = "coffee"
	IconGift     ScopeIcon = "gift"
	IconUtility  ScopeIcon = "zap"
)

var scopeIcons = map[ScopeIcon]struct{}{
	IconWallet: {}, IconFood: {}, IconCar: {}, IconFilm: {}, IconShopping: {}, IconHome: {},
	IconHealth: {}, IconBook: {}, IconTravel: {}, IconCoffee: {}, IconGift: {}, IconUtility: {},
}

func (i ScopeIcon) Valid() bool {
	_, ok := scopeIcons[i]
	return ok
}

// ScopeColor is a palette key, not a literal color value.
type ScopeColor string

const (
	ColorBlue   ScopeColor = "blue"
	ColorGreen  ScopeColor = "green"
	ColorRed    ScopeColor = "red"
	ColorOrange ScopeColor = "orange"
	ColorPurple ScopeColor = "purple"
	ColorPink   ScopeColor = "pink"
	ColorTeal   ScopeColor = "teal"
	ColorYellow ScopeColor = "yellow"
	ColorGray   ScopeColor = "gray"
)

var scopeColors = map[ScopeColor]struct{}{
	ColorBlue: {}, ColorGreen: {}, ColorRed: {}, ColorOrange: {}, ColorPurple: {},
	ColorPink: {}, ColorTeal: {}, ColorYellow: {}, ColorGray: {},
}

func (c ScopeColor) Valid() bool {
	_, ok := scopeColors[c]
	return ok
}

type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeSystem, ThemeLight, ThemeDark:
		return true
	}
	return false
}
