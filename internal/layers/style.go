package layers

import (
	"github.com/paulmach/orb/geojson"

	"github.com/five82/chronomap/internal/geodata"
	"github.com/five82/chronomap/internal/theme"
)

// Pattern is a two-colour diagonal stripe fill.
type Pattern struct {
	Color       string
	SpaceColor  string
	Weight      float64
	SpaceWeight float64
	Angle       float64
}

// Style is a complete path stylesheet.
type Style struct {
	Color       string
	Weight      float64
	Opacity     float64
	DashArray   string
	FillColor   string
	FillOpacity float64
	FillPattern *Pattern
	Radius      float64
}

// Fill palette.
const (
	FillPurple     = "#8A2BE2"
	FillDarkPurple = "#663399"
	FillBrown      = "#A52A2A"
	FillCrimson    = "#DC143C"
	FillCyan       = "#008B8B"
	FillPink       = "#FF1493"
	FillGreen      = "#006400"
	FillOlive      = "#808000"
	FillBlue       = "#1E90FF"
	FillGold       = "#FFD700"
	FillOrange     = "#FFA500"
	FillOrangeRed  = "#FF4500"
	FillDefault    = "#666"
)

// StripePattern fills divisions whose membership was split between units.
var StripePattern = &Pattern{
	Color:       FillCyan,
	SpaceColor:  FillPink,
	Weight:      4,
	SpaceWeight: 4,
	Angle:       315,
}

var (
	lightBorder = Style{Weight: 3, Opacity: 0.5, Color: "#000"}
	darkBorder  = Style{Weight: 3, Opacity: 0.5, Color: "#aaa"}

	lightRegion = Style{Weight: 1.5, Opacity: 0.5, Color: "#000", DashArray: "4, 4", FillOpacity: 0.1}
	darkRegion  = Style{Weight: 1.5, Opacity: 0.5, Color: "#aaa", DashArray: "4, 4", FillOpacity: 0.15}

	baseMarker = Style{Radius: 8, FillColor: "#fff", Color: "#000", Weight: 1, Opacity: 1, FillOpacity: 1}
)

type hoverOverlay struct {
	weight, opacity, fillOpacity float64
	color                        string
}

var (
	lightHover = hoverOverlay{weight: 5, color: "#000", opacity: 0.8, fillOpacity: 0.3}
	darkHover  = hoverOverlay{weight: 5, color: "#aaa", opacity: 0.8, fillOpacity: 0.4}
)

// Fill is a division's fill: a colour or a pattern.
type Fill struct {
	Color   string
	Pattern *Pattern
}

// Division names as they appear in the higherDivision property.
const (
	DivisionRus              = "Руське воєводство"
	DivisionBelz             = "Белзьке воєводство"
	DivisionBrest            = "Берестейське воєводство"
	DivisionVolyn            = "Волинське воєводство"
	DivisionPodil            = "Подільське воєводство"
	DivisionBratslav         = "Брацлавське воєводство"
	DivisionKyiv             = "Київське воєводство"
	DivisionChernihiv        = "Чернігівське воєводство"
	DivisionHetmanate        = "Гетьманщина"
	DivisionZvenyhorodka     = "Київське/Брацлавське воєводство"
	DivisionLubech           = "Київське/Смоленське воєводство"
	DivisionSlobozhanshchyna = "Слобідські козацькі полки"
	DivisionZaporizhzhia     = "Військо Запорозьке Низове"
	DivisionSpis             = "Краківське воєводство"

	KingdomPoland       = "Річ Посполита"
	KingdomMoldavia     = "Молдавське князівство"
	KingdomHungary      = "Угорське королівство (Габсбурзька монархія)"
	KingdomTransylvania = "Трансильванське князівство"
	KingdomRussia       = "московська імперія"
	KingdomTurkey       = "Османська імперія"
)

var divisionFills = map[string]Fill{
	DivisionKyiv:             {Color: FillCyan},
	DivisionZvenyhorodka:     {Pattern: StripePattern},
	DivisionLubech:           {Pattern: StripePattern},
	DivisionRus:              {Color: FillBlue},
	DivisionVolyn:            {Color: FillPurple},
	DivisionChernihiv:        {Color: FillDarkPurple},
	DivisionBelz:             {Color: FillCrimson},
	DivisionPodil:            {Color: FillOlive},
	DivisionBratslav:         {Color: FillPink},
	DivisionBrest:            {Color: FillGold},
	KingdomMoldavia:          {Color: FillOrangeRed},
	KingdomHungary:           {Color: FillGreen},
	KingdomTransylvania:      {Color: FillGold},
	KingdomTurkey:            {Color: FillDarkPurple},
	DivisionHetmanate:        {Color: FillDarkPurple},
	DivisionZaporizhzhia:     {Color: FillGold},
	DivisionSlobozhanshchyna: {Color: FillBlue},
	DivisionSpis:             {Pattern: StripePattern},
}

// DivisionFill looks up the fill of a higher division. Unmapped divisions get
// the default colour.
func DivisionFill(division string) Fill {
	if f, ok := divisionFills[division]; ok {
		return f
	}
	return Fill{Color: FillDefault}
}

// RegionStyle is the category stylesheet of a region feature.
func RegionStyle(mode theme.Mode, f *geojson.Feature) Style {
	s := lightRegion
	if mode.IsDark() {
		s = darkRegion
	}
	var division string
	if f != nil {
		division = geodata.String(f.Properties, "higherDivision")
	}
	fill := DivisionFill(division)
	if fill.Pattern != nil {
		s.FillPattern = fill.Pattern
	} else {
		s.FillColor = fill.Color
	}
	return s
}

// HoverStyle overlays the hover stylesheet on a category stylesheet. Fill
// colour and pattern are kept.
func HoverStyle(mode theme.Mode, base Style) Style {
	o := lightHover
	if mode.IsDark() {
		o = darkHover
	}
	base.Weight = o.weight
	base.Color = o.color
	base.Opacity = o.opacity
	base.FillOpacity = o.fillOpacity
	return base
}

// BorderStyle is the uniform line stylesheet.
func BorderStyle(mode theme.Mode) Style {
	if mode.IsDark() {
		return darkBorder
	}
	return lightBorder
}
