// Package chart builds Plotly figure JSON on the server. The browser only
// hands Data and Layout to Plotly.react.
package chart

// NoDataTitle is the title of every empty figure.
const NoDataTitle = "No hay datos disponibles"

// Palette used across the dashboard pages.
const (
	Blue   = "#3498db"
	Green  = "#2ecc71"
	Red    = "#e74c3c"
	Orange = "#f39c12"
)

type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Empty reports whether the figure carries no traces.
func (f Figure) Empty() bool {
	return len(f.Data) == 0
}

type Title struct {
	Text string `json:"text"`
}

type Font struct {
	Size  int    `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

type Margin struct {
	T int `json:"t"`
	B int `json:"b"`
	L int `json:"l"`
	R int `json:"r"`
}

type Legend struct {
	Orientation string  `json:"orientation,omitempty"`
	YAnchor     string  `json:"yanchor,omitempty"`
	Y           float64 `json:"y"`
	XAnchor     string  `json:"xanchor,omitempty"`
	X           float64 `json:"x"`
}

// HorizontalLegend places the legend below the plot area.
func HorizontalLegend() *Legend {
	return &Legend{Orientation: "h", YAnchor: "bottom", Y: -0.2, XAnchor: "center", X: 0.5}
}

// TopLegend places the legend above the plot area, aligned right.
func TopLegend() *Legend {
	return &Legend{Orientation: "h", YAnchor: "bottom", Y: 1.02, XAnchor: "right", X: 1}
}

type Axis struct {
	Title         *Title    `json:"title,omitempty"`
	Type          string    `json:"type,omitempty"`
	TickAngle     int       `json:"tickangle,omitempty"`
	TickFont      *Font     `json:"tickfont,omitempty"`
	AutoMargin    bool      `json:"automargin,omitempty"`
	CategoryOrder string    `json:"categoryorder,omitempty"`
	Domain        []float64 `json:"domain,omitempty"`
	Anchor        string    `json:"anchor,omitempty"`
	Overlaying    string    `json:"overlaying,omitempty"`
	Side          string    `json:"side,omitempty"`
}

// AxisTitled returns an axis with only a title set.
func AxisTitled(text string) *Axis {
	return &Axis{Title: &Title{Text: text}}
}

type Annotation struct {
	Text      string  `json:"text"`
	XRef      string  `json:"xref,omitempty"`
	YRef      string  `json:"yref,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XAnchor   string  `json:"xanchor,omitempty"`
	YAnchor   string  `json:"yanchor,omitempty"`
	ShowArrow bool    `json:"showarrow"`
	Font      *Font   `json:"font,omitempty"`
}

type ColorAxis struct {
	ShowScale bool `json:"showscale"`
}

type Layout struct {
	Title       *Title       `json:"title,omitempty"`
	Height      int          `json:"height,omitempty"`
	AutoSize    bool         `json:"autosize,omitempty"`
	Margin      *Margin      `json:"margin,omitempty"`
	ShowLegend  *bool        `json:"showlegend,omitempty"`
	Legend      *Legend      `json:"legend,omitempty"`
	HoverMode   string       `json:"hovermode,omitempty"`
	BarGap      float64      `json:"bargap,omitempty"`
	ColorAxis   *ColorAxis   `json:"coloraxis,omitempty"`
	XAxis       *Axis        `json:"xaxis,omitempty"`
	XAxis2      *Axis        `json:"xaxis2,omitempty"`
	XAxis3      *Axis        `json:"xaxis3,omitempty"`
	YAxis       *Axis        `json:"yaxis,omitempty"`
	YAxis2      *Axis        `json:"yaxis2,omitempty"`
	YAxis3      *Axis        `json:"yaxis3,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Bool returns a pointer for optional layout flags.
func Bool(v bool) *bool { return &v }

// Placeholder is the figure shown when a chart has no data.
func Placeholder() Figure {
	return Figure{
		Data:   []Trace{},
		Layout: Layout{Title: &Title{Text: NoDataTitle}},
	}
}

// PlaceholderWithNote adds a centered annotation to the empty figure.
func PlaceholderWithNote(note string) Figure {
	f := Placeholder()
	f.Layout.Annotations = []Annotation{{
		Text:      note,
		XRef:      "paper",
		YRef:      "paper",
		X:         0.5,
		Y:         0.5,
		ShowArrow: false,
		Font:      &Font{Size: 20},
	}}
	return f
}
