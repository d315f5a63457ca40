package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmitchellscott/halftone/internal/dither"
	"github.com/rmitchellscott/halftone/internal/palette"
)

type modeInfo struct {
	Name            string      `json:"name"`
	Kind            dither.Kind `json:"kind"`
	SupportsReducer bool        `json:"supports_reducer"`
	Threshold       int         `json:"threshold,omitempty"`
}

// ModesHandler lists every dithering mode and grayscale reducer
func ModesHandler(c *gin.Context) {
	modes := dither.Modes()
	out := make([]modeInfo, 0, len(modes))
	for _, m := range modes {
		info := modeInfo{Name: m.Name, Kind: m.Kind, SupportsReducer: m.SupportsReducer()}
		if info.SupportsReducer {
			info.Threshold = m.Threshold()
		}
		out = append(out, info)
	}

	c.JSON(http.StatusOK, gin.H{
		"modes":    out,
		"reducers": dither.Reducers(),
	})
}

// PalettesHandler lists the named palettes with their colors
func PalettesHandler(c *gin.Context) {
	out := make([]gin.H, 0)
	for _, name := range palette.Names() {
		p, ok := palette.Named(name)
		if !ok {
			continue
		}
		out = append(out, gin.H{"name": name, "colors": p.Hex()})
	}
	c.JSON(http.StatusOK, gin.H{"palettes": out})
}

// PresetsHandler lists the configured presets
func (h *Handler) PresetsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": h.Presets.List()})
}
