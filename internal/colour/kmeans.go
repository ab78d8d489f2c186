package colour

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"
)

// ErrNoColours is returned when an image has no opaque pixels to cluster.
var ErrNoColours = errors.New("no opaque pixels found in image")

const (
	maxSamples       = 4000
	maxIterations    = 20
	convergenceDelta = 1.0
	// Pixels below this alpha are treated as background and skipped.
	minAlpha = 0x80
)

// Cluster is a group of similar colours found in an image.
type Cluster struct {
	Colour RGB
	// Weight is the share of sampled pixels in the cluster, 0..1.
	Weight float64
}

// ExtractClusters groups the opaque pixels of img into at most k clusters,
// heaviest first. Initialisation is deterministic so the same image always
// yields the same clusters.
func ExtractClusters(img image.Image, k int) ([]Cluster, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if k < 1 || k > 64 {
		return nil, fmt.Errorf("cluster count must be between 1 and 64, got %d", k)
	}

	points := samplePixels(img)
	if len(points) == 0 {
		return nil, ErrNoColours
	}

	counts := make(map[vec3]int)
	for _, p := range points {
		counts[p]++
	}

	var clusters []Cluster
	if len(counts) <= k {
		for p, n := range counts {
			clusters = append(clusters, Cluster{Colour: p.rgb(), Weight: float64(n) / float64(len(points))})
		}
	} else {
		centroids, sizes := kmeans(points, k)
		for i, c := range centroids {
			if sizes[i] == 0 {
				continue
			}
			clusters = append(clusters, Cluster{Colour: c.rgb(), Weight: float64(sizes[i]) / float64(len(points))})
		}
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Weight != clusters[j].Weight {
			return clusters[i].Weight > clusters[j].Weight
		}
		return clusters[i].Colour.Hex() < clusters[j].Colour.Hex()
	})
	return clusters, nil
}

// DominantColour picks the colour that best represents a logo or artwork:
// the heaviest cluster that is saturated and neither near-white nor near-black.
// Monochrome images fall back to their heaviest cluster.
func DominantColour(img image.Image) (RGB, error) {
	clusters, err := ExtractClusters(img, 6)
	if err != nil {
		return RGB{}, err
	}

	for _, c := range clusters {
		hsl := c.Colour.HSL()
		if hsl.S >= 0.2 && hsl.L >= 0.12 && hsl.L <= 0.88 {
			return c.Colour, nil
		}
	}
	return clusters[0].Colour, nil
}

type vec3 struct{ r, g, b float64 }

func (v vec3) dist2(o vec3) float64 {
	dr, dg, db := v.r-o.r, v.g-o.g, v.b-o.b
	return dr*dr + dg*dg + db*db
}

func (v vec3) rgb() RGB {
	return RGB{R: toByte(v.r), G: toByte(v.g), B: toByte(v.b)}
}

func toByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

// samplePixels collects opaque pixels on a grid sized to stay near maxSamples.
func samplePixels(img image.Image) []vec3 {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	step := 1
	if total > maxSamples {
		step = max(int(math.Sqrt(float64(total)/maxSamples)), 1)
	}

	points := make([]vec3, 0, min(total, maxSamples))
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			if a>>8 < minAlpha {
				continue
			}
			// Undo alpha premultiplication.
			scale := 255.0 / float64(a)
			points = append(points, vec3{
				r: math.Round(float64(r) * scale),
				g: math.Round(float64(g) * scale),
				b: math.Round(float64(b) * scale),
			})
		}
	}
	return points
}

// kmeans clusters points around k centroids seeded by farthest-point selection.
func kmeans(points []vec3, k int) ([]vec3, []int) {
	centroids := seedCentroids(points, k)
	assignments := make([]int, len(points))
	sizes := make([]int, k)

	for iter := 0; iter < maxIterations; iter++ {
		for i := range sizes {
			sizes[i] = 0
		}
		sums := make([]vec3, k)
		for i, p := range points {
			nearest := nearestCentroid(p, centroids)
			assignments[i] = nearest
			sizes[nearest]++
			sums[nearest].r += p.r
			sums[nearest].g += p.g
			sums[nearest].b += p.b
		}

		moved := 0.0
		for i := range centroids {
			if sizes[i] == 0 {
				continue
			}
			n := float64(sizes[i])
			next := vec3{r: sums[i].r / n, g: sums[i].g / n, b: sums[i].b / n}
			moved += math.Sqrt(centroids[i].dist2(next))
			centroids[i] = next
		}
		if moved/float64(k) < convergenceDelta {
			break
		}
	}

	// Sizes must match the final centroids.
	for i := range sizes {
		sizes[i] = 0
	}
	for _, p := range points {
		sizes[nearestCentroid(p, centroids)]++
	}
	return centroids, sizes
}

func seedCentroids(points []vec3, k int) []vec3 {
	centroids := []vec3{points[0]}
	nearest := make([]float64, len(points))
	for i, p := range points {
		nearest[i] = p.dist2(points[0])
	}

	for len(centroids) < k {
		far := 0
		for i := range points {
			if nearest[i] > nearest[far] {
				far = i
			}
		}
		c := points[far]
		centroids = append(centroids, c)
		for i, p := range points {
			nearest[i] = math.Min(nearest[i], p.dist2(c))
		}
	}
	return centroids
}

func nearestCentroid(p vec3, centroids []vec3) int {
	best, bestDist := 0, math.MaxFloat64
	for i, c := range centroids {
		if d := p.dist2(c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
