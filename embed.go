package pubtheme

import "embed"

// EmbeddedAssets contains the theme assets served under /public/theme/:
// the stylesheets, front-end scripts and the admin script.
//
//go:embed embedded
var EmbeddedAssets embed.FS
