package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb/geojson"

	"github.com/five82/chronomap/internal/geodata"
	"github.com/five82/chronomap/internal/layers"
)

const infoHint = "Наведіть курсор на область на карті, щоб переглянути детальну інформацію"

// originalLanguage names the language of a state's original place names,
// in the form used by the "Назва ..." row.
var originalLanguage = map[string]string{
	layers.KingdomPoland:       "польською",
	layers.KingdomHungary:      "угорською",
	layers.KingdomMoldavia:     "румунською",
	layers.KingdomTransylvania: "угорською",
	layers.KingdomTurkey:       "османською",
	layers.KingdomRussia:       "російською",
}

type infoRow struct {
	Label string
	Value string
}

// regionInfo is the text content of the info panel for one region.
type regionInfo struct {
	Name     string
	Division string
	Country  string
	Rows     []infoRow
}

// describeRegion extracts the info panel content from region properties.
// The division is shown only when it differs from both the name and the
// country. The original name is shown only for states with a known language.
func describeRegion(props geojson.Properties) regionInfo {
	info := regionInfo{
		Name:    geodata.String(props, "name"),
		Country: geodata.String(props, "country"),
	}
	division := geodata.String(props, "higherDivision")
	if division != info.Name && division != info.Country {
		info.Division = division
	}

	add := func(label, key string) {
		if v := geodata.String(props, key); v != "" {
			info.Rows = append(info.Rows, infoRow{Label: label, Value: v})
		}
	}
	if lang, ok := originalLanguage[info.Country]; ok {
		add("Назва "+lang, "nameOriginal")
	}
	add("Назва латиною", "nameLatin")
	add("Центр", "center")
	add("Роки існування", "years")
	add("Додатково", "description")
	return info
}

// renderInfo renders the info panel body for the hovered region, or the
// hint when nothing is hovered.
func renderInfo(props geojson.Properties, styles Styles, width int) string {
	wrap := lipgloss.NewStyle().Width(max(width, 1))
	if props == nil {
		return wrap.Render(styles.MutedText.Render(infoHint))
	}

	info := describeRegion(props)
	var b strings.Builder
	b.WriteString(wrap.Render(styles.Title.Render(info.Name)))
	if info.Division != "" {
		b.WriteString("\n")
		b.WriteString(wrap.Render(styles.MutedText.Render(info.Division)))
	}
	if info.Country != "" {
		b.WriteString("\n")
		b.WriteString(wrap.Render(styles.MutedText.Render("⚑ " + info.Country)))
	}
	if len(info.Rows) > 0 {
		b.WriteString("\n")
	}
	for _, row := range info.Rows {
		b.WriteString("\n")
		b.WriteString(wrap.Render(styles.Text.Bold(true).Render(row.Label+":") + " " + styles.Text.Render(row.Value)))
	}
	return b.String()
}
