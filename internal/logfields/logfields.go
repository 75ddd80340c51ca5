package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPage       = "page"
	KeySlug       = "slug"
	KeyPath       = "path"
	KeyTemplate   = "template"
	KeyStage      = "stage"
	KeyMode       = "mode"
	KeyDurationMS = "duration_ms"
	KeyOut        = "out"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Page(title string) slog.Attr      { return slog.String(KeyPage, title) }
func Slug(s string) slog.Attr          { return slog.String(KeySlug, s) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Template(name string) slog.Attr   { return slog.String(KeyTemplate, name) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Mode(m string) slog.Attr          { return slog.String(KeyMode, m) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Out(dir string) slog.Attr         { return slog.String(KeyOut, dir) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
