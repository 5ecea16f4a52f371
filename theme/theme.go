// Package theme holds the presentation settings of the site theme and
// the small filters derived from them.
package theme

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ContentWidth is the default maximum width of embedded content.
const ContentWidth = 840

// CustomType describes a registered custom post type.
type CustomType struct {
	Name     string `yaml:"name" validate:"required,max=20"`
	Label    string `yaml:"label"`
	Taxonomy string `yaml:"taxonomy" validate:"omitempty,max=32"`
	// ParentPage is the slug of the landing page linked in breadcrumbs.
	ParentPage string `yaml:"parent_page"`
}

// Config is the theme.yaml document.
type Config struct {
	HTML5           bool         `yaml:"html5"`
	RTL             bool         `yaml:"rtl"`
	ContentWidth    int          `yaml:"content_width" validate:"gte=0,lte=4096"`
	BackgroundImage string       `yaml:"background_image"`
	BackgroundColor string       `yaml:"background_color" validate:"omitempty,hexadecimal,len=3|len=6"`
	GalleryStyle    *bool        `yaml:"gallery_style"`
	CustomTypes     []CustomType `yaml:"custom_types" validate:"dive"`
}

// Default returns the built in theme settings.
func Default() Config {
	return Config{
		HTML5:        true,
		ContentWidth: ContentWidth,
		CustomTypes: []CustomType{
			{Name: "portfolio", Label: "Portfolio", Taxonomy: "portfolio_entries"},
		},
	}
}

// Load reads a theme.yaml file over the defaults. A missing file yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read theme config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a theme.yaml document over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse theme config: %w", err)
	}
	if cfg.ContentWidth == 0 {
		cfg.ContentWidth = ContentWidth
	}
	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid theme config: %w", err)
	}
	return cfg, nil
}

var validate = validator.New()

// GalleryStyleEnabled reports whether gallery inline styles are emitted.
func (c Config) GalleryStyleEnabled() bool {
	return c.GalleryStyle == nil || *c.GalleryStyle
}

// CustomType returns the settings of the named custom post type.
func (c Config) CustomType(name string) (CustomType, bool) {
	for _, ct := range c.CustomTypes {
		if ct.Name == name {
			return ct, true
		}
	}
	return CustomType{}, false
}

// BodyState is what the body class filter looks at.
type BodyState struct {
	MultiAuthor   bool
	SidebarActive bool
	Singular      bool
}

// BodyClasses appends the theme's classes to classes.
func (c Config) BodyClasses(classes []string, s BodyState) []string {
	if c.BackgroundImage != "" {
		classes = append(classes, "custom-background-image")
	}
	if s.MultiAuthor {
		classes = append(classes, "group-blog")
	}
	if !s.SidebarActive {
		classes = append(classes, "no-sidebar")
	}
	if !s.Singular {
		classes = append(classes, "hfeed")
	}
	return classes
}

// ContentImageSizes returns the sizes attribute for a content image of
// width pixels on a post of postType.
func ContentImageSizes(width int, postType string) string {
	w := strconv.Itoa(width)
	narrow := "(max-width: " + w + "px) 85vw, " + w + "px"
	switch {
	case width >= 840:
		return "(max-width: 709px) 85vw, (max-width: 909px) 67vw, (max-width: 1362px) 62vw, 840px"
	case postType == "page", width < 600:
		return narrow
	default:
		return "(max-width: 709px) 85vw, (max-width: 909px) 67vw, (max-width: 984px) 61vw, (max-width: 1362px) 45vw, 600px"
	}
}

// ThumbnailSizes returns the sizes attribute for a post thumbnail.
func ThumbnailSizes(sidebarActive bool) string {
	if sidebarActive {
		return "(max-width: 709px) 85vw, (max-width: 909px) 67vw, (max-width: 984px) 60vw, (max-width: 1362px) 62vw, 840px"
	}
	return "(max-width: 709px) 85vw, (max-width: 909px) 67vw, (max-width: 1362px) 88vw, 1200px"
}

// RGB is a decoded color.
type RGB struct {
	Red, Green, Blue uint8
}

// CSS returns the color as "r, g, b" for use in rgba().
func (c RGB) CSS() string {
	return fmt.Sprintf("%d, %d, %d", c.Red, c.Green, c.Blue)
}

// Hex2RGB decodes a 3 or 6 digit hex color with or without a leading #.
func Hex2RGB(color string) (RGB, bool) {
	color = strings.Trim(color, "#")
	if len(color) == 3 {
		color = string([]byte{color[0], color[0], color[1], color[1], color[2], color[2]})
	}
	if len(color) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(color, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{Red: uint8(v >> 16), Green: uint8(v >> 8), Blue: uint8(v)}, true
}
