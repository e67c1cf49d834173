package canopy

// batchKey groups quads that can be submitted in a single draw call.
type batchKey struct {
	texture TextureHandle
	shader  ShaderID
	blend   BlendMode
	filter  Filter
}

func quadBatchKey(q *Quad) batchKey {
	return batchKey{texture: q.Texture, shader: q.Shader, blend: q.Blend, filter: q.Filter}
}

// submitBatches hands each run of consecutive quads sharing a batch key to
// the backend, preserving draw order. Returns the number of draw calls.
func (s *Stage) submitBatches(target TextureHandle, quads []Quad) int {
	if len(quads) == 0 {
		return 0
	}
	batches := 0
	start := 0
	key := quadBatchKey(&quads[0])
	for i := 1; i <= len(quads); i++ {
		if i < len(quads) {
			next := quadBatchKey(&quads[i])
			if next == key {
				continue
			}
			key = next
		}
		s.backend.DrawQuads(target, quads[start:i])
		batches++
		start = i
	}
	return batches
}
