package evaluate

import (
	"strings"
	"testing"

	"github.com/plateguard/go-platedetect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const viaSample = `{
  "_via_settings": {"ui": {}},
  "_via_img_metadata": {
    "car1.jpg12345": {
      "filename": "car1.jpg",
      "size": 12345,
      "regions": [
        {
          "shape_attributes": {"name": "rect", "x": 120, "y": 340, "width": 110, "height": 32},
          "region_attributes": {}
        },
        {
          "shape_attributes": {"name": "polygon", "all_points_x": [1, 2], "all_points_y": [3, 4]},
          "region_attributes": {}
        },
        {
          "shape_attributes": {"name": "rect", "x": 400, "y": 360, "width": 98, "height": 28},
          "region_attributes": {}
        }
      ]
    },
    "car2.jpg999": {
      "filename": "car2.jpg",
      "size": 999,
      "regions": [
        {
          "shape_attributes": {"name": "rect", "x": 50, "y": 200, "width": 130, "height": 40},
          "region_attributes": {}
        }
      ]
    },
    "empty.jpg1": {
      "filename": "empty.jpg",
      "size": 1,
      "regions": []
    }
  },
  "_via_attributes": {}
}`

func TestLoadVIA(t *testing.T) {

	annotations, err := LoadVIA(strings.NewReader(viaSample))

	require.NoError(t, err)
	require.Len(t, annotations, 2)

	car1 := annotations["car1.jpg"]
	require.Len(t, car1, 2)

	// the polygon region is skipped, rectangle regions keep their per image
	// index in the ID
	assert.Equal(t, "car1.jpg#0", car1[0].ID)
	assert.Equal(t, platedetect.NewRect(120, 340, 110, 32), car1[0].Rect)

	assert.Equal(t, "car1.jpg#2", car1[1].ID)
	assert.Equal(t, platedetect.NewRect(400, 360, 98, 28), car1[1].Rect)

	car2 := annotations["car2.jpg"]
	require.Len(t, car2, 1)
	assert.Equal(t, platedetect.NewRect(50, 200, 130, 40), car2[0].Rect)

	// images without rectangle regions produce no entry
	assert.NotContains(t, annotations, "empty.jpg")
}

func TestLoadVIARejectsBadInput(t *testing.T) {

	_, err := LoadVIA(strings.NewReader("not json"))
	assert.Error(t, err)

	_, err = LoadVIA(strings.NewReader(`{"_via_img_metadata": {}}`))
	assert.Error(t, err)
}
