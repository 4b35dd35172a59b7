package chart

import "strconv"

// Columns lays out up to three side-by-side subplots with the given titles and
// returns the layout plus the axis ids for each column ("x", "y"),
// ("x2", "y2") and so on. Traces are placed with Trace.OnAxes.
func Columns(titles []string, gap float64) (Layout, [][2]string) {
	n := len(titles)
	layout := Layout{}
	axes := make([][2]string, n)
	if n == 0 {
		return layout, axes
	}

	width := (1 - gap*float64(n-1)) / float64(n)
	for i := 0; i < n; i++ {
		start := float64(i) * (width + gap)
		end := start + width
		suffix := ""
		if i > 0 {
			suffix = strconv.Itoa(i + 1)
		}
		x := &Axis{Domain: []float64{start, end}, Anchor: "y" + suffix}
		y := &Axis{Anchor: "x" + suffix}
		switch i {
		case 0:
			layout.XAxis, layout.YAxis = x, y
		case 1:
			layout.XAxis2, layout.YAxis2 = x, y
		case 2:
			layout.XAxis3, layout.YAxis3 = x, y
		}
		axes[i] = [2]string{"x" + suffix, "y" + suffix}
		layout.Annotations = append(layout.Annotations, Annotation{
			Text:      titles[i],
			XRef:      "paper",
			YRef:      "paper",
			X:         (start + end) / 2,
			Y:         1,
			XAnchor:   "center",
			YAnchor:   "bottom",
			ShowArrow: false,
			Font:      &Font{Size: 14},
		})
	}
	return layout, axes
}

// XAxisAt returns the layout's x axis for a 1-based column.
func (l *Layout) XAxisAt(col int) *Axis {
	switch col {
	case 1:
		return l.XAxis
	case 2:
		return l.XAxis2
	case 3:
		return l.XAxis3
	}
	return nil
}
