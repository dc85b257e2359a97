package charts

// Figure is a Plotly figure in the JSON shape plotly.js accepts for
// Plotly.newPlot(el, figure.data, figure.layout).
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type          string   `json:"type"`
	Mode          string   `json:"mode,omitempty"`
	Name          string   `json:"name,omitempty"`
	X             []any    `json:"x,omitempty"`
	Y             []any    `json:"y,omitempty"`
	Labels        []string `json:"labels,omitempty"`
	Values        []any    `json:"values,omitempty"`
	Text          []string `json:"text,omitempty"`
	TextPosition  string   `json:"textposition,omitempty"`
	TextInfo      string   `json:"textinfo,omitempty"`
	CustomData    []any    `json:"customdata,omitempty"`
	HoverTemplate string   `json:"hovertemplate,omitempty"`
	Marker        *Marker  `json:"marker,omitempty"`
	Line          *Line    `json:"line,omitempty"`
}

type Marker struct {
	Color      any       `json:"color,omitempty"`
	Colors     []string  `json:"colors,omitempty"`
	Size       any       `json:"size,omitempty"`
	ColorScale string    `json:"colorscale,omitempty"`
	ShowScale  bool      `json:"showscale,omitempty"`
	ColorBar   *ColorBar `json:"colorbar,omitempty"`
}

type ColorBar struct {
	Title Text `json:"title"`
}

type Line struct {
	Color string `json:"color,omitempty"`
	Width int    `json:"width,omitempty"`
}

type Text struct {
	Text string `json:"text"`
}

type Font struct {
	Size  int    `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

type Axis struct {
	Title     Text   `json:"title"`
	GridColor string `json:"gridcolor,omitempty"`
}

type Annotation struct {
	Text      string  `json:"text"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XAnchor   string  `json:"xanchor"`
	YAnchor   string  `json:"yanchor"`
	ShowArrow bool    `json:"showarrow"`
	Font      Font    `json:"font"`
}

type Layout struct {
	Title        Text         `json:"title"`
	XAxis        *Axis        `json:"xaxis,omitempty"`
	YAxis        *Axis        `json:"yaxis,omitempty"`
	Height       int          `json:"height"`
	ShowLegend   *bool        `json:"showlegend,omitempty"`
	Annotations  []Annotation `json:"annotations,omitempty"`
	PaperBGColor string       `json:"paper_bgcolor"`
	PlotBGColor  string       `json:"plot_bgcolor"`
	Font         Font         `json:"font"`
}

const (
	colorGreen  = "#28a745"
	colorYellow = "#ffc107"
	colorRed    = "#dc3545"
	colorBlue   = "#007bff"

	darkBackground = "#111111"
	darkForeground = "#f2f5fa"
	darkGrid       = "#283442"
)

func darkLayout(title string, height int) Layout {
	return Layout{
		Title:        Text{Text: title},
		Height:       height,
		PaperBGColor: darkBackground,
		PlotBGColor:  darkBackground,
		Font:         Font{Color: darkForeground},
	}
}

func axis(title string) *Axis {
	return &Axis{Title: Text{Text: title}, GridColor: darkGrid}
}

func paperAnnotation(text string) Annotation {
	return Annotation{
		Text:    text,
		XRef:    "paper",
		YRef:    "paper",
		X:       0.5,
		Y:       1.1,
		XAnchor: "center",
		YAnchor: "bottom",
		Font:    Font{Size: 12},
	}
}
