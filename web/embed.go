// Package web embeds the single-page auth UI served alongside the API.
package web

import "embed"

// Static embeds the single-page UI assets.
//
//go:embed static/*
var Static embed.FS
