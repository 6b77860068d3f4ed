package ui

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the width below which the info panel is hidden
	// and the hovered region is summarised in the footer.
	LayoutCompactWidth = 90

	// InfoPanelWidth is the width of the info panel including its border.
	InfoPanelWidth = 38
)

// Map navigation steps.
const (
	// ZoomStep is the zoom change of one zoom key press or wheel notch.
	ZoomStep = 0.5

	// PanCols and PanRows are the cells moved by one pan key press.
	PanCols = 8
	PanRows = 3

	// SearchZoom is the zoom a selected search result is shown at.
	SearchZoom = 14
)

// chromeRows is the number of rows used by the header and footer.
const chromeRows = 2
