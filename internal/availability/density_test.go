package availability

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDensityColor(t *testing.T) {
	_, ok := DensityColor(0)
	assert.False(t, ok)

	expected := map[int]string{
		1: "hsl(120, 52%, 83%)",
		2: "hsl(120, 64%, 71%)",
		3: "hsl(120, 76%, 59%)",
		5: "hsl(120, 100%, 35%)",
		6: "hsl(120, 112%, 25%)",
	}
	for count, want := range expected {
		got, ok := DensityColor(count)
		assert.True(t, ok)
		assert.Equal(t, want, got, "count %d", count)
	}
}

func TestDensityColorFormula(t *testing.T) {
	for count := 1; count <= 5; count++ {
		light := 95 - 12*count
		if light < 25 {
			light = 25
		}
		got, ok := DensityColor(count)
		assert.True(t, ok)
		assert.Equal(t, fmt.Sprintf("hsl(120, %d%%, %d%%)", 40+12*count, light), got)
	}
}
