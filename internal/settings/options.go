package settings

// Option is one selectable value with a human label.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var AspectRatios = []Option{
	{Label: "4:5 (portrait, recommended for Instagram)", Value: "--ar 4:5"},
	{Label: "16:9 (landscape)", Value: "--ar 16:9"},
	{Label: "9:16 (phone portrait)", Value: "--ar 9:16"},
	{Label: "1:1 (square)", Value: "--ar 1:1"},
	{Label: "9:9 (square)", Value: "--ar 9:9"},
}

var StylizeValues = []Option{
	{Label: "s0 (no stylize)", Value: "s0"},
	{Label: "s100 (light, default)", Value: "s100"},
	{Label: "s200 (medium)", Value: "s200"},
	{Label: "s300 (strong)", Value: "s300"},
	{Label: "s400 (very strong)", Value: "s400"},
	{Label: "s500 (extreme)", Value: "s500"},
	{Label: "s1000 (maximum)", Value: "s1000"},
}

var Versions = []Option{
	{Label: "v7.0 (latest)", Value: "--v 7.0"},
	{Label: "v6.1 (previous)", Value: "--v 6.1"},
}

// Choices groups every option list for clients that render pickers.
type Choices struct {
	AspectRatios []Option `json:"aspectRatios"`
	Stylize      []Option `json:"stylize"`
	Versions     []Option `json:"versions"`
	MinCount     int      `json:"minPromptCount"`
	MaxCount     int      `json:"maxPromptCount"`
}

func AllChoices() Choices {
	return Choices{
		AspectRatios: AspectRatios,
		Stylize:      StylizeValues,
		Versions:     Versions,
		MinCount:     MinPromptCount,
		MaxCount:     MaxPromptCount,
	}
}

// Next returns the value following current in opts, wrapping around. An
// unknown current value yields the first option.
func Next(opts []Option, current string) string {
	if len(opts) == 0 {
		return current
	}
	for i, o := range opts {
		if o.Value == current {
			return opts[(i+1)%len(opts)].Value
		}
	}
	return opts[0].Value
}

// Label returns the label for value, or value itself when unlisted.
func Label(opts []Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
