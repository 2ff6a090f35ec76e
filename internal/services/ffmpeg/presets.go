package ffmpeg

import "fmt"

// effectFilters grade each background clip.
var effectFilters = map[string]string{
	"subtle":    "eq=contrast=1.03:saturation=1.02",
	"cinematic": "eq=saturation=0.9,vignette=angle=PI/5",
	"warm":      "eq=saturation=1.1,colorbalance=rs=0.05:bs=-0.05",
	"cool":      "eq=saturation=0.8,colorbalance=rs=-0.05:bs=0.05",
}

// transitionNames maps transition types to xfade transitions.
var transitionNames = map[string]string{
	"crossfade": "fade",
	"slide":     "slideleft",
	"zoom":      "zoomin",
}

type textStyle struct {
	fontSize    int
	fontColor   string
	borderColor string
	borderWidth int
	boxOpacity  float64
}

var textStyles = map[string]textStyle{
	"modern":  {fontSize: 60, fontColor: "white", borderColor: "black", borderWidth: 3, boxOpacity: 0.7},
	"elegant": {fontSize: 55, fontColor: "white", borderColor: "0x191970", borderWidth: 2, boxOpacity: 0.6},
	"bold":    {fontSize: 70, fontColor: "yellow", borderColor: "black", borderWidth: 4, boxOpacity: 0.8},
	"minimal": {fontSize: 50, fontColor: "white", borderColor: "gray", borderWidth: 1, boxOpacity: 0.5},
	"vibrant": {fontSize: 65, fontColor: "0xFFD700", borderColor: "0x8B4513", borderWidth: 3, boxOpacity: 0.7},
}

func effectFilter(name string) string {
	if f, ok := effectFilters[name]; ok {
		return f
	}
	return effectFilters["subtle"]
}

func transitionName(name string) string {
	if t, ok := transitionNames[name]; ok {
		return t
	}
	return "fade"
}

func styleFor(name string) textStyle {
	if s, ok := textStyles[name]; ok {
		return s
	}
	return textStyles["modern"]
}

// animationExprs returns the alpha, y, and fontsize expressions for a chunk
// shown between start and end.
func animationExprs(animation string, style textStyle, start, end float64, first, last bool) (alpha, y, size string) {
	alpha = "1"
	y = "(h-text_h)/2"
	size = fmt.Sprintf("%d", style.fontSize)
	switch animation {
	case "fade":
		in, out := 0.0, 0.3
		if first {
			in = 0.5
		}
		if last {
			out = 0.5
		}
		alpha = fadeAlpha(start, end, in, out)
	case "slide":
		y = fmt.Sprintf("(h-text_h)/2+200*max(0,1-(t-%.3f)/0.5)", start)
	case "zoom":
		size = fmt.Sprintf("%d*min(1+(t-%.3f)*0.05,1.05)", style.fontSize, start)
	}
	return alpha, y, size
}

func fadeAlpha(start, end, in, out float64) string {
	parts := "1"
	if out > 0 {
		parts = fmt.Sprintf("min(1,(%.3f-t)/%.3f)", end, out)
	}
	if in > 0 {
		parts = fmt.Sprintf("min(%s,(t-%.3f)/%.3f)", parts, start, in)
	}
	return parts
}
