package domain

// TileStyle is a base-map tile layer the map view can switch to.
type TileStyle struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// DefaultTileStyle is used at start-up and for unknown style names.
const DefaultTileStyle = "Esri.WorldImagery"

var tileStyles = []TileStyle{
	{
		Name:        "Esri.WorldImagery",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Tiles © Esri — Source: Esri, i-cubed, USDA, USGS, AEX, GeoEye, Getmapping, Aerogrid, IGN, IGP, UPR-EGP, and the GIS User Community",
	},
	{
		Name:        "OpenTopoMap",
		URL:         "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png",
		Attribution: "Map data: © OpenStreetMap contributors, SRTM | Map style: © OpenTopoMap (CC-BY-SA)",
	},
	{
		Name:        "Thunderforest.Outdoors",
		URL:         "https://{s}.tile.thunderforest.com/outdoors/{z}/{x}/{y}.png?apikey={apikey}",
		Attribution: "© Thunderforest, © OpenStreetMap contributors",
	},
	{
		Name:        "Stamen.Terrain",
		URL:         "https://stamen-tiles-{s}.a.ssl.fastly.net/terrain/{z}/{x}/{y}{r}.{ext}",
		Attribution: "Map tiles by Stamen Design, CC BY 3.0 — Map data © OpenStreetMap contributors",
	},
}

// TileStyles returns the selectable tile styles in menu order.
func TileStyles() []TileStyle {
	out := make([]TileStyle, len(tileStyles))
	copy(out, tileStyles)
	return out
}

// LookupTileStyle returns the named style, falling back to DefaultTileStyle.
func LookupTileStyle(name string) TileStyle {
	for _, s := range tileStyles {
		if s.Name == name {
			return s
		}
	}
	return tileStyles[0]
}

// NextTileStyle returns the style after name in menu order, wrapping around.
func NextTileStyle(name string) TileStyle {
	for i, s := range tileStyles {
		if s.Name == name {
			return tileStyles[(i+1)%len(tileStyles)]
		}
	}
	return tileStyles[0]
}
