package ui

// Shorthands for the escape sequences of the active theme.

func ColorReset() string     { return GetCurrentTheme().Reset }
func ColorRed() string       { return GetCurrentTheme().Error }
func ColorGreen() string     { return GetCurrentTheme().Success }
func ColorYellow() string    { return GetCurrentTheme().Warning }
func ColorBlue() string      { return GetCurrentTheme().Primary }
func ColorMagenta() string   { return GetCurrentTheme().Info }
func ColorCyan() string      { return GetCurrentTheme().Secondary }
func ColorBold() string      { return GetCurrentTheme().Bold }
func ColorUnderline() string { return GetCurrentTheme().Underline }

// ColorProvider adapts the active theme to apperrors.ColorProvider.
type ColorProvider struct{}

func (ColorProvider) Yellow() string { return ColorYellow() }
func (ColorProvider) Red() string    { return ColorRed() }
func (ColorProvider) Reset() string  { return ColorReset() }
