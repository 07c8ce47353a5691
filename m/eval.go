package m

// evalChunk bounds the number of columns pushed through one forward pass
// during evaluation.
const evalChunk = 1024

// Evaluate scores the network on s and returns the mean cross-entropy and the
// fraction of examples whose most probable class matches the label. It does
// not modify the network.
func (net *Network) Evaluate(s Split) (loss, accuracy float64, err error) {
	if err := net.checkSplit("evaluate", s); err != nil {
		return 0, 0, err
	}
	loss, accuracy, _ = net.evaluate(s)
	return loss, accuracy, nil
}

func (net *Network) evaluate(s Split) (loss, accuracy float64, clipped int) {
	n := s.Len()
	lossSum := 0.0
	correct := 0
	for k := 0; k < n; k += evalChunk {
		end := k + evalChunk
		if end > n {
			end = n
		}
		chunk := s.columns(k, end)
		out := net.forward(chunk.Features).Output

		for j := 0; j < end-k; j++ {
			l, c := crossEntropy(chunk.Labels.ColView(j), out.ColView(j))
			lossSum += l
			clipped += c
			if argmaxColumn(out, j) == argmaxColumn(chunk.Labels, j) {
				correct++
			}
		}
	}
	return lossSum / float64(n), float64(correct) / float64(n), clipped
}
