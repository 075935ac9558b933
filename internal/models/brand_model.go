package models

// Mode is the alternating content variant tied to alternating grid hours.
const (
	ModeLight = "light"
	ModeDark  = "dark"
)

// Brand is a closed registry entry. Index determines the brand's hour
// stagger on the daily slot grid, so no two brands share a wall-clock slot.
type Brand struct {
	Name  string
	Index int
}

var Brands = []Brand{
	{Name: "gymcollege", Index: 0},
	{Name: "healthycollege", Index: 1},
	{Name: "vitalitycollege", Index: 2},
	{Name: "longevitycollege", Index: 3},
}

func BrandByName(name string) (Brand, bool) {
	for _, b := range Brands {
		if b.Name == name {
			return b, true
		}
	}
	return Brand{}, false
}

func ValidMode(mode string) bool {
	return mode == ModeLight || mode == ModeDark
}
