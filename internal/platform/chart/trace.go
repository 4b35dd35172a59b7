package chart

type Marker struct {
	Color      interface{} `json:"color,omitempty"`
	Colors     []string    `json:"colors,omitempty"`
	ColorScale string      `json:"colorscale,omitempty"`
	Size       interface{} `json:"size,omitempty"`
	SizeMode   string      `json:"sizemode,omitempty"`
	SizeRef    float64     `json:"sizeref,omitempty"`
	ShowScale  bool        `json:"showscale,omitempty"`
}

type Line struct {
	Width int    `json:"width,omitempty"`
	Color string `json:"color,omitempty"`
}

// Trace is one Plotly trace. Only the attributes the dashboard uses are
// modelled; zero values are omitted from the JSON.
type Trace struct {
	Type          string          `json:"type"`
	Name          string          `json:"name,omitempty"`
	X             interface{}     `json:"x,omitempty"`
	Y             interface{}     `json:"y,omitempty"`
	Labels        []string        `json:"labels,omitempty"`
	Values        interface{}     `json:"values,omitempty"`
	Orientation   string          `json:"orientation,omitempty"`
	Mode          string          `json:"mode,omitempty"`
	Hole          float64         `json:"hole,omitempty"`
	TextInfo      string          `json:"textinfo,omitempty"`
	TextPosition  string          `json:"textposition,omitempty"`
	HoverTemplate string          `json:"hovertemplate,omitempty"`
	CustomData    [][]interface{} `json:"customdata,omitempty"`
	Marker        *Marker         `json:"marker,omitempty"`
	Line          *Line           `json:"line,omitempty"`
	XAxis         string          `json:"xaxis,omitempty"`
	YAxis         string          `json:"yaxis,omitempty"`
	NBinsX        int             `json:"nbinsx,omitempty"`
	HistFunc      string          `json:"histfunc,omitempty"`
	ShowLegend    *bool           `json:"showlegend,omitempty"`

	// Box traces built from precomputed statistics.
	Q1         []float64 `json:"q1,omitempty"`
	Median     []float64 `json:"median,omitempty"`
	Q3         []float64 `json:"q3,omitempty"`
	LowerFence []float64 `json:"lowerfence,omitempty"`
	UpperFence []float64 `json:"upperfence,omitempty"`
	Mean       []float64 `json:"mean,omitempty"`
	SD         []float64 `json:"sd,omitempty"`
	BoxMean    string    `json:"boxmean,omitempty"`
}

// Bar returns a vertical bar trace.
func Bar(name string, x, y interface{}, color string) Trace {
	t := Trace{Type: "bar", Name: name, X: x, Y: y}
	if color != "" {
		t.Marker = &Marker{Color: color}
	}
	return t
}

// HBar returns a horizontal bar trace coloured by its values.
func HBar(labels []string, values []int64, colorScale string) Trace {
	return Trace{
		Type:        "bar",
		X:           values,
		Y:           labels,
		Orientation: "h",
		Marker:      &Marker{Color: values, ColorScale: colorScale},
	}
}

// LineMarkers returns a scatter trace drawn as lines with markers.
func LineMarkers(name string, x, y interface{}, color string, width, markerSize int) Trace {
	return Trace{
		Type:   "scatter",
		Name:   name,
		Mode:   "lines+markers",
		X:      x,
		Y:      y,
		Line:   &Line{Width: width, Color: color},
		Marker: &Marker{Color: color, Size: markerSize},
	}
}

// Pie returns a pie trace; hole > 0 draws a donut.
func Pie(labels []string, values []int64, hole float64) Trace {
	return Trace{Type: "pie", Labels: labels, Values: values, Hole: hole}
}

// BoxStats describes a box plot by its precomputed quartiles and fences.
type BoxStats struct {
	Name       string
	Min, Max   float64
	Q1, Q3     float64
	Median     float64
	Mean, SD   float64
	ShowMeanSD bool
}

// Box returns a box trace from precomputed statistics, so the raw
// observations never leave the database.
func Box(s BoxStats, color string) Trace {
	t := Trace{
		Type:       "box",
		Name:       s.Name,
		Q1:         []float64{s.Q1},
		Median:     []float64{s.Median},
		Q3:         []float64{s.Q3},
		LowerFence: []float64{s.Min},
		UpperFence: []float64{s.Max},
		Marker:     &Marker{Color: color},
	}
	if s.ShowMeanSD {
		t.Mean = []float64{s.Mean}
		t.SD = []float64{s.SD}
		t.BoxMean = "sd"
	}
	return t
}

// OnAxes moves a trace to the given axis pair, e.g. ("x2", "y2").
func (t Trace) OnAxes(x, y string) Trace {
	t.XAxis = x
	t.YAxis = y
	return t
}

// WithHover sets the hover template.
func (t Trace) WithHover(tmpl string) Trace {
	t.HoverTemplate = tmpl
	return t
}
