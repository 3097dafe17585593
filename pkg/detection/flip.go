package detection

// FlipHorizontal mirrors every x coordinate as width-1-x. Corners are not
// swapped, so a flipped box has BottomRight.X < TopLeft.X; renderers must
// cope with that.
func FlipHorizontal(batch Batch, width int) Batch {
	if len(batch) == 0 {
		return batch
	}

	w := float64(width - 1)
	out := make(Batch, len(batch))
	for i, d := range batch {
		f := Detection{
			TopLeft:     Point{X: w - d.TopLeft.X, Y: d.TopLeft.Y},
			BottomRight: Point{X: w - d.BottomRight.X, Y: d.BottomRight.Y},
			Probability: d.Probability,
		}
		if d.Landmarks != nil {
			f.Landmarks = make([]Point, len(d.Landmarks))
			for j, p := range d.Landmarks {
				f.Landmarks[j] = Point{X: w - p.X, Y: p.Y}
			}
		}
		out[i] = f
	}
	return out
}
