package view

import "fmt"

// Theme selects one of the stylesheet variants.
type Theme struct {
	Name string
	Dark bool
}

var (
	// Studio is the dark hero layout of the live site.
	Studio = Theme{Name: "studio", Dark: true}
	Light  = Theme{Name: "light"}
)

func ParseTheme(name string) (Theme, error) {
	switch name {
	case Studio.Name, "":
		return Studio, nil
	case Light.Name:
		return Light, nil
	}
	return Theme{}, fmt.Errorf("unknown theme %q", name)
}
