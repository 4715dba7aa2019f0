package availability

import "fmt"

const (
	densityHue            = 120
	densityBaseSaturation = 40
	densityBaseLightness  = 95
	densityStep           = 12
	densityMinLightness   = 25
)

// DensityColor returns the CSS hsl() shade for a slot picked by count
// participants. More participants give a more saturated, darker green.
// It returns false when there is nothing to shade.
func DensityColor(count int) (string, bool) {
	if count <= 0 {
		return "", false
	}
	saturation := densityBaseSaturation + densityStep*count
	lightness := densityBaseLightness - densityStep*count
	if lightness < densityMinLightness {
		lightness = densityMinLightness
	}
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", densityHue, saturation, lightness), true
}
