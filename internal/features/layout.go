package features

import "linkpred/internal/hierarchy"

// newLayoutOnly uses geometry and structure only. Element geometry is
// relative to the source root's bounds so that screens of different sizes
// compare.
func newLayoutOnly() *extractor {
	return &extractor{
		strategy: LayoutOnly,
		names: []string{
			"center_x", "center_y", "width", "height", "area_ratio",
			"depth", "children", "descendants", "siblings", "clickable", "visible",
			"target_nodes", "target_clickable", "target_max_depth",
		},
		compute: func(el hierarchy.ElementRef, target *hierarchy.ViewHierarchy) Vector {
			screen := el.Hierarchy().Root().Bounds
			sw, sh := float64(screen.Width()), float64(screen.Height())
			b := el.Bounds

			descendants := 0
			for range el.Descendants() {
				descendants++
			}
			clickable := 0
			for n := range target.AllNodes() {
				if n.Clickable {
					clickable++
				}
			}

			return Vector{
				ratio(float64(b.Left+b.Right)/2-float64(screen.Left), sw),
				ratio(float64(b.Top+b.Bottom)/2-float64(screen.Top), sh),
				ratio(float64(b.Width()), sw),
				ratio(float64(b.Height()), sh),
				ratio(float64(b.Area()), float64(screen.Area())),
				float64(el.Depth()),
				float64(len(el.Children)),
				float64(descendants),
				float64(len(el.Siblings())),
				b2f(el.Clickable),
				b2f(el.VisibleToUser),
				float64(target.Len()),
				float64(clickable),
				float64(target.MaxDepth()),
			}
		},
	}
}
