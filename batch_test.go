package canopy

import "testing"

func TestQuadBatchKey(t *testing.T) {
	a := Quad{Texture: 1, Shader: 2, Blend: BlendAdd, Filter: FilterLinear, ZOrder: 1}
	b := a
	b.ZOrder = 7
	b.Color = ColorWhite
	if quadBatchKey(&a) != quadBatchKey(&b) {
		t.Error("z-order and color must not split a batch")
	}

	for name, mutate := range map[string]func(q *Quad){
		"texture": func(q *Quad) { q.Texture = 3 },
		"shader":  func(q *Quad) { q.Shader = 0 },
		"blend":   func(q *Quad) { q.Blend = BlendNormal },
		"filter":  func(q *Quad) { q.Filter = FilterNearest },
	} {
		c := a
		mutate(&c)
		if quadBatchKey(&a) == quadBatchKey(&c) {
			t.Errorf("%s change did not split the batch", name)
		}
	}
}

func TestSubmitBatchesKeepsOrder(t *testing.T) {
	s, b := newTestStage()
	quads := []Quad{
		{Texture: 1, ZOrder: 1},
		{Texture: 1, ZOrder: 2},
		{Texture: 2, ZOrder: 3},
		{Texture: 1, ZOrder: 4},
	}
	if n := s.submitBatches(ScreenTarget, quads); n != 3 {
		t.Fatalf("batches = %d, want 3", n)
	}
	if len(b.draws) != 3 {
		t.Fatalf("draw calls = %d, want 3", len(b.draws))
	}
	want := [][]int{{1, 2}, {3}, {4}}
	for i, d := range b.draws {
		if len(d.quads) != len(want[i]) {
			t.Fatalf("batch %d has %d quads, want %d", i, len(d.quads), len(want[i]))
		}
		for j, q := range d.quads {
			if q.ZOrder != want[i][j] {
				t.Errorf("batch %d quad %d z = %d, want %d", i, j, q.ZOrder, want[i][j])
			}
		}
	}
}
