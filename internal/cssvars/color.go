package cssvars

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/zjrosen/themer/internal/tokens"
)

// Color is a parsed CSS color with its alpha channel.
type Color struct {
	colorful.Color
	Alpha float64
}

// ParseColor understands hex notation (#rgb, #rgba, #rrggbb, #rrggbbaa),
// rgb()/rgba(), hsl()/hsla(), CSS named colors and "transparent".
func ParseColor(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return Color{}, fmt.Errorf("empty color")
	case v == "transparent":
		return Color{Alpha: 0}, nil
	case strings.HasPrefix(v, "#"):
		return parseHex(v)
	case strings.HasPrefix(v, "rgb"):
		return parseRGBFunc(v)
	case strings.HasPrefix(v, "hsl"):
		return parseHSLFunc(v)
	}
	if named, ok := colornames.Map[v]; ok {
		c, _ := colorful.MakeColor(named)
		return Color{Color: c, Alpha: 1}, nil
	}
	return Color{}, fmt.Errorf("not a color: %q", s)
}

// IsColor reports whether s parses as a color.
func IsColor(s string) bool {
	_, err := ParseColor(s)
	return err == nil
}

// ToRGB returns the space separated 0-255 channels of s, the form expected
// inside rgb(var(--x) / <alpha-value>).
func ToRGB(s string) (string, error) {
	c, err := ParseColor(s)
	if err != nil {
		return "", err
	}
	return c.Channels(), nil
}

// Alpha returns the alpha channel of s in [0, 1].
func Alpha(s string) (float64, error) {
	c, err := ParseColor(s)
	if err != nil {
		return 0, err
	}
	return c.Alpha, nil
}

// Channels formats the color as "r g b".
func (c Color) Channels() string {
	r, g, b := c.Clamped().RGB255()
	return fmt.Sprintf("%d %d %d", r, g, b)
}

// Translucent reports whether the color has an alpha below 1.
func (c Color) Translucent() bool {
	return c.Alpha < 1
}

// Luminance is the WCAG relative luminance.
func (c Color) Luminance() float64 {
	r, g, b := c.Clamped().LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// Readable returns black or white, whichever contrasts more with s.
func Readable(s string) (string, error) {
	c, err := ParseColor(s)
	if err != nil {
		return "", err
	}
	if c.Luminance() > 0.179 {
		return "#000000", nil
	}
	return "#ffffff", nil
}

func parseHex(v string) (Color, error) {
	digits := v[1:]
	alpha := 1.0
	switch len(digits) {
	case 4:
		a, err := strconv.ParseUint(strings.Repeat(digits[3:], 2), 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q", v)
		}
		alpha = float64(a) / 255
		digits = digits[:3]
	case 8:
		a, err := strconv.ParseUint(digits[6:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q", v)
		}
		alpha = float64(a) / 255
		digits = digits[:6]
	}
	c, err := colorful.Hex("#" + digits)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q", v)
	}
	return Color{Color: c, Alpha: alpha}, nil
}

// funcArgs splits "name(a, b, c)" or "name(a b c / d)" into its arguments.
func funcArgs(v string) ([]string, string, error) {
	open := strings.IndexByte(v, '(')
	if open < 0 || !strings.HasSuffix(v, ")") {
		return nil, "", fmt.Errorf("malformed color function %q", v)
	}
	body := v[open+1 : len(v)-1]
	var alpha string
	if slash := strings.IndexByte(body, '/'); slash >= 0 {
		alpha = strings.TrimSpace(body[slash+1:])
		body = body[:slash]
	}
	args := strings.FieldsFunc(body, func(r rune) bool { return r == ',' || r == ' ' })
	if len(args) == 4 && alpha == "" {
		alpha = args[3]
		args = args[:3]
	}
	if len(args) != 3 {
		return nil, "", fmt.Errorf("color function %q needs three channels", v)
	}
	return args, alpha, nil
}

func parseRGBFunc(v string) (Color, error) {
	args, alphaArg, err := funcArgs(v)
	if err != nil {
		return Color{}, err
	}
	var ch [3]float64
	for i, a := range args {
		if strings.HasSuffix(a, "%") {
			p, err := strconv.ParseFloat(strings.TrimSuffix(a, "%"), 64)
			if err != nil {
				return Color{}, fmt.Errorf("invalid channel %q", a)
			}
			ch[i] = p / 100
			continue
		}
		n, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return Color{}, fmt.Errorf("invalid channel %q", a)
		}
		ch[i] = n / 255
	}
	alpha, err := parseAlpha(alphaArg)
	if err != nil {
		return Color{}, err
	}
	return Color{Color: colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, Alpha: alpha}, nil
}

func parseHSLFunc(v string) (Color, error) {
	args, alphaArg, err := funcArgs(v)
	if err != nil {
		return Color{}, err
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hue %q", args[0])
	}
	s, err := parsePercent(args[1])
	if err != nil {
		return Color{}, err
	}
	l, err := parsePercent(args[2])
	if err != nil {
		return Color{}, err
	}
	alpha, err := parseAlpha(alphaArg)
	if err != nil {
		return Color{}, err
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return Color{Color: colorful.Hsl(h, s, l), Alpha: alpha}, nil
}

func parsePercent(a string) (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSuffix(a, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q", a)
	}
	return p / 100, nil
}

func parseAlpha(a string) (float64, error) {
	if a == "" {
		return 1, nil
	}
	if strings.HasSuffix(a, "%") {
		return parsePercent(a)
	}
	f, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid alpha %q", a)
	}
	return f, nil
}

// SwapScale reverses a numeric shade scale such as {50, 100, ..., 900}
// so that 50 takes the value of 900 and so on. Keys that are not numeric,
// like DEFAULT or foreground, keep their values. Dark themes use it to
// reuse a light palette.
func SwapScale(scale *tokens.Group) *tokens.Group {
	out := scale.Clone()
	if out == nil {
		return tokens.NewGroup()
	}
	var shades []string
	for k, v := range scale.All() {
		if _, isLeaf := v.(tokens.Leaf); !isLeaf {
			continue
		}
		if _, err := strconv.Atoi(k); err == nil {
			shades = append(shades, k)
		}
	}
	for i, k := range shades {
		mirror, _ := scale.Get(shades[len(shades)-1-i])
		out.Set(k, mirror)
	}
	return out
}

// FillForeground adds a readable "foreground" to every color group that
// has a DEFAULT color but no foreground. It returns the number of groups
// it changed.
func FillForeground(g *tokens.Group) int {
	filled := 0
	for _, v := range g.All() {
		child, ok := v.(*tokens.Group)
		if !ok {
			continue
		}
		base, hasDefault := child.LeafAt("DEFAULT")
		_, hasForeground := child.Get("foreground")
		if hasDefault && !hasForeground {
			if fg, err := Readable(base); err == nil {
				child.Set("foreground", tokens.Leaf(fg))
				filled++
				continue
			}
		}
		filled += FillForeground(child)
	}
	return filled
}
