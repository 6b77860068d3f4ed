// Package config loads chronomap's configuration.
//
// # Resolution
//
// Load reads ~/.config/chronomap/config.toml unless a path is given. A missing
// file is not an error: every field has a default, and the built-in period
// catalog (1640 and 1760) is used. Values are then overridden by
// CHRONOMAP_DATA_URL, CHRONOMAP_DATA_DIR and CHRONOMAP_LOG_LEVEL. LoadEnv
// can populate those from a .env file first.
//
// # TOML Format
//
//	data_url = "http://127.0.0.1:8740"
//	data_dir = "~/.local/share/chronomap/data"
//	log_level = "info"
//	log_format = "text"
//	log_file = "~/.local/state/chronomap/chronomap.log"
//	search_url = "https://nominatim.openstreetmap.org"
//	search_country = "ua"
//	search_debounce_ms = 500
//	initial_zoom = 6
//	center = [48.88, 30.81]
//	label_zoom_level2 = 7
//	label_zoom_level3 = 8
//	default_period = "1640"
//
//	[[periods]]
//	id = "1640"
//	label = "1640"
//	areas = "areas-1640"
//	borders = "borders-1640"
//	points = "points-1640"
//
// Declaring any [[periods]] replaces the built-in catalog. Dataset files are
// referenced without extension; data_ext (default geojson) is appended.
//
// Paths starting with ~ are expanded to the home directory.
package config
